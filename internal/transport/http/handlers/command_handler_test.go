package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
	pgrepo "github.com/CodeCommander07/flat-studios-sub002/internal/repo/postgres"
	dispatchsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/dispatch"
	ingestsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/ingest"
)

type commandStoreStub struct {
	commands   map[string]*model.Command
	enqueueErr error
}

func newCommandStoreStub() *commandStoreStub {
	return &commandStoreStub{commands: make(map[string]*model.Command)}
}

func (s *commandStoreStub) Enqueue(_ context.Context, cmd model.Command) error {
	if s.enqueueErr != nil {
		return s.enqueueErr
	}
	stored := cmd
	s.commands[cmd.CommandID] = &stored
	return nil
}

func (s *commandStoreStub) AcquirePending(_ context.Context, serverID, token string, expires time.Time) ([]model.Command, error) {
	var acquired []model.Command
	for _, cmd := range s.commands {
		if cmd.ServerID != serverID || cmd.Status != enums.CommandStatusPending {
			continue
		}
		cmd.Status = enums.CommandStatusDelivered
		tok := token
		exp := expires
		cmd.DeliveryToken = &tok
		cmd.DeliveryExpires = &exp
		acquired = append(acquired, *cmd)
	}
	return acquired, nil
}

func (s *commandStoreStub) Ack(_ context.Context, commandID, token string, status enums.CommandStatus) (model.Command, bool, error) {
	cmd, ok := s.commands[commandID]
	if !ok || cmd.Status != enums.CommandStatusDelivered || cmd.DeliveryToken == nil || *cmd.DeliveryToken != token {
		return model.Command{}, false, nil
	}
	cmd.Status = status
	return *cmd, true, nil
}

func (s *commandStoreStub) RequeueExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *commandStoreStub) ListByServer(_ context.Context, serverID string) ([]model.Command, error) {
	var commands []model.Command
	for _, cmd := range s.commands {
		if cmd.ServerID == serverID {
			commands = append(commands, *cmd)
		}
	}
	return commands, nil
}

type chatStoreStub struct{}

func (chatStoreStub) Append(context.Context, model.ChatEntry, int) error { return nil }
func (chatStoreStub) List(context.Context, string) ([]model.ChatEntry, error) {
	return nil, nil
}

type auditStoreStub struct{}

func (auditStoreStub) Append(context.Context, model.AuditEntry) error { return nil }
func (auditStoreStub) ListByServer(context.Context, string, int) ([]model.AuditEntry, error) {
	return nil, nil
}

type serverStoreStub struct{}

func (serverStoreStub) Upsert(context.Context, string) error { return nil }
func (serverStoreStub) Get(context.Context, string) (model.ServerMeta, error) {
	return model.ServerMeta{}, nil
}
func (serverStoreStub) List(context.Context) ([]model.ServerMeta, error)  { return nil, nil }
func (serverStoreStub) SetFlagged(context.Context, string, bool) error    { return nil }

type rosterStoreStub struct{}

func (rosterStoreStub) Replace(context.Context, string, []model.Player) error { return nil }
func (rosterStoreStub) List(context.Context, string) ([]model.Player, error)  { return nil, nil }

type outboxStoreStub struct {
	messages []model.OutboundMessage
}

func (s *outboxStoreStub) Append(_ context.Context, msg model.OutboundMessage) error {
	s.messages = append(s.messages, msg)
	return nil
}

func (s *outboxStoreStub) Drain(context.Context, string) ([]model.OutboundMessage, error) {
	drained := s.messages
	s.messages = nil
	return drained, nil
}

func newCommandTestRouter(store *commandStoreStub, outbox *outboxStoreStub) chi.Router {
	dispatchService := dispatchsvc.NewService(store, chatStoreStub{}, auditStoreStub{}, dispatchsvc.Config{})
	ingestService := ingestsvc.NewService(serverStoreStub{}, chatStoreStub{}, rosterStoreStub{}, auditStoreStub{}, outbox, nil, ingestsvc.Config{})
	handler := NewCommandHandler(dispatchService, ingestService)

	r := chi.NewRouter()
	r.Post("/servers/{serverID}/commands", handler.Enqueue)
	r.Get("/servers/{serverID}/poll", handler.Poll)
	r.Post("/commands/{commandID}/ack", handler.Ack)
	return r
}

func TestEnqueueCommandCreated(t *testing.T) {
	store := newCommandStoreStub()
	router := newCommandTestRouter(store, &outboxStoreStub{})

	body, _ := json.Marshal(map[string]string{
		"type":      "kick",
		"target_id": "42",
		"reason":    "spamming",
		"issued_by": "mod_alice",
	})
	req := httptest.NewRequest(http.MethodPost, "/servers/srv-1/commands", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var payload struct {
		CommandID string `json:"command_id"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.CommandID == "" || payload.Status != "pending" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestEnqueueCommandRejectsUnknownType(t *testing.T) {
	router := newCommandTestRouter(newCommandStoreStub(), &outboxStoreStub{})

	body, _ := json.Marshal(map[string]string{
		"type":      "teleport",
		"target_id": "42",
		"issued_by": "mod_alice",
	})
	req := httptest.NewRequest(http.MethodPost, "/servers/srv-1/commands", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestEnqueueCommandUnknownServerNotFound(t *testing.T) {
	store := newCommandStoreStub()
	store.enqueueErr = pgrepo.ErrServerNotFound
	router := newCommandTestRouter(store, &outboxStoreStub{})

	body, _ := json.Marshal(map[string]string{
		"type":      "kick",
		"target_id": "42",
		"issued_by": "mod_alice",
	})
	req := httptest.NewRequest(http.MethodPost, "/servers/srv-missing/commands", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPollReturnsCommandsAndDrainsOutbox(t *testing.T) {
	store := newCommandStoreStub()
	outbox := &outboxStoreStub{messages: []model.OutboundMessage{
		{ID: 1, ServerID: "srv-1", Message: "restart soon", Author: "mod_alice"},
	}}
	router := newCommandTestRouter(store, outbox)

	body, _ := json.Marshal(map[string]string{
		"type":      "mute",
		"target_id": "42",
		"issued_by": "mod_alice",
	})
	enqueue := httptest.NewRequest(http.MethodPost, "/servers/srv-1/commands", bytes.NewReader(body))
	router.ServeHTTP(httptest.NewRecorder(), enqueue)

	req := httptest.NewRequest(http.MethodGet, "/servers/srv-1/poll", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		DeliveryToken string `json:"delivery_token"`
		Commands      []struct {
			CommandID string `json:"command_id"`
			Status    string `json:"status"`
		} `json:"commands"`
		Messages []struct {
			Message string `json:"message"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.DeliveryToken == "" {
		t.Fatalf("delivery token missing")
	}
	if len(payload.Commands) != 1 || payload.Commands[0].Status != "delivered" {
		t.Fatalf("unexpected commands: %+v", payload.Commands)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Message != "restart soon" {
		t.Fatalf("unexpected messages: %+v", payload.Messages)
	}
}

func TestAckWithStaleTokenConflicts(t *testing.T) {
	store := newCommandStoreStub()
	router := newCommandTestRouter(store, &outboxStoreStub{})

	body, _ := json.Marshal(map[string]string{
		"type":      "warn",
		"target_id": "42",
		"issued_by": "mod_alice",
	})
	enqueue := httptest.NewRequest(http.MethodPost, "/servers/srv-1/commands", bytes.NewReader(body))
	router.ServeHTTP(httptest.NewRecorder(), enqueue)

	poll := httptest.NewRequest(http.MethodGet, "/servers/srv-1/poll", nil)
	router.ServeHTTP(httptest.NewRecorder(), poll)

	var commandID string
	for id := range store.commands {
		commandID = id
	}

	ackBody, _ := json.Marshal(map[string]string{
		"delivery_token": "not-the-current-token",
		"result":         "executed",
	})
	req := httptest.NewRequest(http.MethodPost, "/commands/"+commandID+"/ack", bytes.NewReader(ackBody))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusConflict)
	}
}
