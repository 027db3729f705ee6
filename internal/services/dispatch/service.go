package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

var (
	ErrInvalidInput = errors.New("invalid dispatch payload")
	ErrStaleAck     = errors.New("acknowledgement does not match a delivered command")
)

type CommandStore interface {
	Enqueue(ctx context.Context, cmd model.Command) error
	AcquirePending(ctx context.Context, serverID, deliveryToken string, deliveryExpires time.Time) ([]model.Command, error)
	Ack(ctx context.Context, commandID, deliveryToken string, status enums.CommandStatus) (model.Command, bool, error)
	RequeueExpired(ctx context.Context, now time.Time) (int64, error)
	ListByServer(ctx context.Context, serverID string) ([]model.Command, error)
}

type ChatStore interface {
	Append(ctx context.Context, entry model.ChatEntry, window int) error
}

type AuditStore interface {
	Append(ctx context.Context, entry model.AuditEntry) error
}

// ActionRecorder writes an acknowledged in-game command to the moderation
// ledger, which outlives the per-server aggregate the sweeper reclaims.
// Attached after construction; a nil recorder skips the ledger write.
type ActionRecorder interface {
	Record(ctx context.Context, action model.ModerationAction) (model.ModerationAction, error)
}

type Config struct {
	DeliveryTTL time.Duration
	ChatWindow  int
}

// Service runs the staff-to-game command queue. Game servers only ever poll;
// nothing here pushes to them. Delivery is at-least-once: polled commands are
// leased with a token and return to pending if no acknowledgement arrives
// before the lease expires.
type Service struct {
	commands CommandStore
	chat     ChatStore
	audit    AuditStore
	recorder ActionRecorder
	cfg      Config
	now      func() time.Time
}

func NewService(commands CommandStore, chat ChatStore, audit AuditStore, cfg Config) *Service {
	if cfg.DeliveryTTL <= 0 {
		cfg.DeliveryTTL = 90 * time.Second
	}
	if cfg.ChatWindow <= 0 {
		cfg.ChatWindow = 100
	}

	return &Service{
		commands: commands,
		chat:     chat,
		audit:    audit,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) AttachRecorder(recorder ActionRecorder) {
	s.recorder = recorder
}

// Enqueue queues a staff command for the next poll and mirrors it into the
// server's chat window and audit trail so the dashboard shows it immediately.
func (s *Service) Enqueue(ctx context.Context, serverID string, cmdType enums.CommandType, targetID, reason, issuedBy string) (model.Command, error) {
	if s.commands == nil || s.chat == nil || s.audit == nil {
		return model.Command{}, fmt.Errorf("dispatch service dependencies are not configured")
	}
	if serverID == "" || targetID == "" || issuedBy == "" || !cmdType.Valid() {
		return model.Command{}, ErrInvalidInput
	}

	now := s.now().UTC()
	cmd := model.Command{
		CommandID: uuid.NewString(),
		ServerID:  serverID,
		Type:      cmdType,
		TargetID:  targetID,
		Reason:    strings.TrimSpace(reason),
		IssuedBy:  issuedBy,
		Status:    enums.CommandStatusPending,
		CreatedAt: now,
	}

	if err := s.commands.Enqueue(ctx, cmd); err != nil {
		return model.Command{}, err
	}

	line := fmt.Sprintf("%s issued %s against %s", issuedBy, cmdType, targetID)
	if cmd.Reason != "" {
		line += ": " + cmd.Reason
	}
	if err := s.chat.Append(ctx, model.ChatEntry{
		ServerID: serverID,
		PlayerID: "0",
		Username: issuedBy,
		Message:  line,
		Type:     enums.ChatEntryTypeCommand,
		Time:     now,
	}, s.cfg.ChatWindow); err != nil {
		return model.Command{}, err
	}
	if err := s.audit.Append(ctx, model.AuditEntry{
		ServerID: serverID,
		Action:   string(cmdType),
		Actor:    issuedBy,
		Details:  fmt.Sprintf("target %s, command %s", targetID, cmd.CommandID),
		Time:     now,
	}); err != nil {
		return model.Command{}, err
	}

	return cmd, nil
}

// Poll leases every pending command for the server under a fresh delivery
// token. Commands already leased to an earlier poll are not returned again
// until their lease lapses.
func (s *Service) Poll(ctx context.Context, serverID string) ([]model.Command, error) {
	if s.commands == nil {
		return nil, fmt.Errorf("dispatch service dependencies are not configured")
	}
	if serverID == "" {
		return nil, ErrInvalidInput
	}

	token := uuid.NewString()
	expires := s.now().UTC().Add(s.cfg.DeliveryTTL)

	return s.commands.AcquirePending(ctx, serverID, token, expires)
}

// Ack settles a delivered command. Executed commands record success; rejected
// ones record the terminal failed state so staff can see the command never
// took effect. A second acknowledgement, or one carrying a lapsed token, is
// reported as stale and changes nothing. Settled enforcement commands are
// additionally appended to the moderation ledger, which survives the
// retention sweep of the server aggregate.
func (s *Service) Ack(ctx context.Context, commandID, deliveryToken string, executed bool) error {
	if s.commands == nil {
		return fmt.Errorf("dispatch service dependencies are not configured")
	}
	if commandID == "" || deliveryToken == "" {
		return ErrInvalidInput
	}

	status := enums.CommandStatusExecuted
	if !executed {
		status = enums.CommandStatusFailed
	}

	cmd, settled, err := s.commands.Ack(ctx, commandID, deliveryToken, status)
	if err != nil {
		return err
	}
	if !settled {
		return ErrStaleAck
	}

	if s.recorder != nil {
		if actionType, ok := ledgerAction(cmd.Type); ok {
			actionStatus := enums.ActionStatusSuccess
			if !executed {
				actionStatus = enums.ActionStatusFailed
			}
			serverID := cmd.ServerID
			if _, err := s.recorder.Record(ctx, model.ModerationAction{
				Action:        actionType,
				TargetID:      cmd.TargetID,
				ModeratorID:   cmd.IssuedBy,
				ModeratorName: cmd.IssuedBy,
				ServerID:      &serverID,
				Scope:         enums.ActionScopeServer,
				Reason:        cmd.Reason,
				Status:        actionStatus,
				CreatedAt:     s.now().UTC(),
			}); err != nil {
				return fmt.Errorf("record enforcement outcome: %w", err)
			}
		}
	}

	return nil
}

// ledgerAction maps a command type to its moderation ledger action. Warnings
// are chat-visible only and never ledgered.
func ledgerAction(t enums.CommandType) (enums.ActionType, bool) {
	switch t {
	case enums.CommandTypeKick:
		return enums.ActionTypeKick, true
	case enums.CommandTypeMute:
		return enums.ActionTypeMute, true
	case enums.CommandTypeUnmute:
		return enums.ActionTypeUnmute, true
	}
	return "", false
}

// RequeueExpired returns lapsed leases to the pending pool.
func (s *Service) RequeueExpired(ctx context.Context) (int64, error) {
	if s.commands == nil {
		return 0, fmt.Errorf("dispatch service dependencies are not configured")
	}

	return s.commands.RequeueExpired(ctx, s.now().UTC())
}

// History lists every command ever issued to a server, in issue order.
func (s *Service) History(ctx context.Context, serverID string) ([]model.Command, error) {
	if s.commands == nil {
		return nil, fmt.Errorf("dispatch service dependencies are not configured")
	}
	if serverID == "" {
		return nil, ErrInvalidInput
	}

	return s.commands.ListByServer(ctx, serverID)
}
