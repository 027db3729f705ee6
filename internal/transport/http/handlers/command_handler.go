package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
	pgrepo "github.com/CodeCommander07/flat-studios-sub002/internal/repo/postgres"
	dispatchsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/dispatch"
	ingestsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/ingest"
	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
	httperrors "github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/errors"
)

type CommandHandler struct {
	dispatch *dispatchsvc.Service
	ingest   *ingestsvc.Service
}

func NewCommandHandler(dispatch *dispatchsvc.Service, ingest *ingestsvc.Service) *CommandHandler {
	return &CommandHandler{dispatch: dispatch, ingest: ingest}
}

// Enqueue queues a staff command for the server's next poll.
func (h *CommandHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	if h.dispatch == nil {
		writeInternal(w, "DISPATCH_SERVICE_UNAVAILABLE", "dispatch service is unavailable")
		return
	}

	var req dto.EnqueueCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	cmd, err := h.dispatch.Enqueue(r.Context(), chi.URLParam(r, "serverID"), enums.CommandType(req.Type), req.TargetID, req.Reason, req.IssuedBy)
	if err != nil {
		handleDispatchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, commandResponse(cmd))
}

// Poll leases pending commands to the calling game server and drains its
// broadcast outbox in the same response.
func (h *CommandHandler) Poll(w http.ResponseWriter, r *http.Request) {
	if h.dispatch == nil || h.ingest == nil {
		writeInternal(w, "DISPATCH_SERVICE_UNAVAILABLE", "dispatch service is unavailable")
		return
	}

	serverID := chi.URLParam(r, "serverID")

	commands, err := h.dispatch.Poll(r.Context(), serverID)
	if err != nil {
		handleDispatchError(w, err)
		return
	}

	messages, err := h.ingest.DrainOutbox(r.Context(), serverID)
	if err != nil {
		handleIngestError(w, err)
		return
	}

	resp := dto.PollResponse{
		Commands: make([]dto.CommandResponse, 0, len(commands)),
		Messages: make([]dto.OutboundMessageResponse, 0, len(messages)),
	}
	for _, cmd := range commands {
		if cmd.DeliveryToken != nil {
			resp.DeliveryToken = *cmd.DeliveryToken
		}
		resp.Commands = append(resp.Commands, commandResponse(cmd))
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, dto.OutboundMessageResponse{
			ID:      msg.ID,
			Message: msg.Message,
			Author:  msg.Author,
			Time:    msg.Time,
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

// Ack settles one delivered command as executed or rejected.
func (h *CommandHandler) Ack(w http.ResponseWriter, r *http.Request) {
	if h.dispatch == nil {
		writeInternal(w, "DISPATCH_SERVICE_UNAVAILABLE", "dispatch service is unavailable")
		return
	}

	var req dto.AckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	var executed bool
	switch req.Result {
	case "executed":
		executed = true
	case "rejected":
		executed = false
	default:
		writeBadRequest(w, "INVALID_REQUEST", "result must be executed or rejected")
		return
	}

	if err := h.dispatch.Ack(r.Context(), chi.URLParam(r, "commandID"), req.DeliveryToken, executed); err != nil {
		if errors.Is(err, dispatchsvc.ErrStaleAck) {
			writeConflict(w, "STALE_ACK", "command is not delivered under this token")
			return
		}
		handleDispatchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *CommandHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.dispatch == nil {
		writeInternal(w, "DISPATCH_SERVICE_UNAVAILABLE", "dispatch service is unavailable")
		return
	}

	commands, err := h.dispatch.History(r.Context(), chi.URLParam(r, "serverID"))
	if err != nil {
		handleDispatchError(w, err)
		return
	}

	resp := dto.CommandHistoryResponse{Commands: make([]dto.CommandResponse, 0, len(commands))}
	for _, cmd := range commands {
		resp.Commands = append(resp.Commands, commandResponse(cmd))
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func commandResponse(cmd model.Command) dto.CommandResponse {
	return dto.CommandResponse{
		CommandID: cmd.CommandID,
		ServerID:  cmd.ServerID,
		Type:      string(cmd.Type),
		TargetID:  cmd.TargetID,
		Reason:    cmd.Reason,
		IssuedBy:  cmd.IssuedBy,
		Status:    string(cmd.Status),
		CreatedAt: cmd.CreatedAt,
		DecidedAt: cmd.DecidedAt,
	}
}

func handleDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatchsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, pgrepo.ErrServerNotFound):
		writeNotFound(w, "SERVER_NOT_FOUND", "server aggregate not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
