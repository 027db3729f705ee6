package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
	"github.com/CodeCommander07/flat-studios-sub002/internal/pkg/validate"
)

var (
	ErrRateLimited  = errors.New("chat ingestion rate limit exceeded")
	ErrInvalidInput = errors.New("invalid ingest payload")
)

const maxChatMessageLen = 1000

type ServerStore interface {
	Upsert(ctx context.Context, serverID string) error
	Get(ctx context.Context, serverID string) (model.ServerMeta, error)
	List(ctx context.Context) ([]model.ServerMeta, error)
	SetFlagged(ctx context.Context, serverID string, flagged bool) error
}

type ChatStore interface {
	Append(ctx context.Context, entry model.ChatEntry, window int) error
	List(ctx context.Context, serverID string) ([]model.ChatEntry, error)
}

type RosterStore interface {
	Replace(ctx context.Context, serverID string, players []model.Player) error
	List(ctx context.Context, serverID string) ([]model.Player, error)
}

type AuditStore interface {
	Append(ctx context.Context, entry model.AuditEntry) error
	ListByServer(ctx context.Context, serverID string, limit int) ([]model.AuditEntry, error)
}

type OutboxStore interface {
	Append(ctx context.Context, msg model.OutboundMessage) error
	Drain(ctx context.Context, serverID string) ([]model.OutboundMessage, error)
}

type ChatLimiter interface {
	AllowChat(ctx context.Context, serverID, playerID string) (int64, bool, error)
}

// Snapshotter captures server evidence to object storage when staff flag a
// server. Attached after construction; a nil snapshotter skips capture.
type Snapshotter interface {
	Capture(ctx context.Context, serverID string, players []model.Player, chat []model.ChatEntry) (string, error)
}

type Config struct {
	ChatWindow int
}

// Service owns the per-server aggregate: roster, chat window, audit trail and
// outbound broadcasts. Every write refreshes the server's last-seen time via
// the upsert, which is what the retention sweeper keys off.
type Service struct {
	servers     ServerStore
	chat        ChatStore
	roster      RosterStore
	audit       AuditStore
	outbox      OutboxStore
	limiter     ChatLimiter
	snapshotter Snapshotter
	cfg         Config
}

func NewService(servers ServerStore, chat ChatStore, roster RosterStore, audit AuditStore, outbox OutboxStore, limiter ChatLimiter, cfg Config) *Service {
	if cfg.ChatWindow <= 0 {
		cfg.ChatWindow = 100
	}

	return &Service{
		servers: servers,
		chat:    chat,
		roster:  roster,
		audit:   audit,
		outbox:  outbox,
		limiter: limiter,
		cfg:     cfg,
	}
}

func (s *Service) AttachSnapshotter(snapshotter Snapshotter) {
	s.snapshotter = snapshotter
}

// PushChat stores one chat line, registering the server on first contact and
// trimming the window to its configured size.
func (s *Service) PushChat(ctx context.Context, entry model.ChatEntry) error {
	if s.servers == nil || s.chat == nil {
		return fmt.Errorf("ingest service dependencies are not configured")
	}
	if entry.ServerID == "" || entry.PlayerID == "" || !validate.Required(entry.Message) {
		return ErrInvalidInput
	}
	if len(entry.Message) > maxChatMessageLen {
		cut := maxChatMessageLen
		for cut > 0 && !utf8.RuneStart(entry.Message[cut]) {
			cut--
		}
		entry.Message = entry.Message[:cut]
	}
	if entry.Type == "" {
		entry.Type = enums.ChatEntryTypeMessage
	}

	if s.limiter != nil {
		_, allowed, err := s.limiter.AllowChat(ctx, entry.ServerID, entry.PlayerID)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrRateLimited
		}
	}

	if err := s.servers.Upsert(ctx, entry.ServerID); err != nil {
		return err
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}

	return s.chat.Append(ctx, entry, s.cfg.ChatWindow)
}

// ReplaceRoster swaps the server's player list wholesale. The game reports the
// full roster on every heartbeat, so there is no per-player delta path.
func (s *Service) ReplaceRoster(ctx context.Context, serverID string, players []model.Player) error {
	if s.servers == nil || s.roster == nil {
		return fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" {
		return ErrInvalidInput
	}
	for _, p := range players {
		if p.PlayerID == "" {
			return ErrInvalidInput
		}
	}

	if err := s.servers.Upsert(ctx, serverID); err != nil {
		return err
	}

	return s.roster.Replace(ctx, serverID, players)
}

// PostNotification fans a staff broadcast out to the chat window, the audit
// trail and the outbox the game server drains.
func (s *Service) PostNotification(ctx context.Context, serverID, message, actor string) error {
	if s.servers == nil || s.chat == nil || s.audit == nil || s.outbox == nil {
		return fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" || !validate.Required(message) || actor == "" {
		return ErrInvalidInput
	}

	if _, err := s.servers.Get(ctx, serverID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.chat.Append(ctx, model.ChatEntry{
		ServerID: serverID,
		PlayerID: "0",
		Username: actor,
		Message:  message,
		Type:     enums.ChatEntryTypeNotification,
		Time:     now,
	}, s.cfg.ChatWindow); err != nil {
		return err
	}
	if err := s.audit.Append(ctx, model.AuditEntry{
		ServerID: serverID,
		Action:   "notification",
		Actor:    actor,
		Details:  message,
		Time:     now,
	}); err != nil {
		return err
	}

	return s.outbox.Append(ctx, model.OutboundMessage{
		ServerID: serverID,
		Message:  message,
		Author:   actor,
		Time:     now,
	})
}

// SetFlagged marks a server for extended retention. Flagging captures an
// evidence snapshot of the current roster and chat window when a snapshotter
// is attached; clearing the flag captures nothing.
func (s *Service) SetFlagged(ctx context.Context, serverID, actor string, flagged bool) error {
	if s.servers == nil || s.audit == nil {
		return fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" || actor == "" {
		return ErrInvalidInput
	}

	if err := s.servers.SetFlagged(ctx, serverID, flagged); err != nil {
		return err
	}

	details := "flag cleared"
	if flagged {
		details = "flagged for review"
		if s.snapshotter != nil {
			players, err := s.roster.List(ctx, serverID)
			if err != nil {
				return err
			}
			chat, err := s.chat.List(ctx, serverID)
			if err != nil {
				return err
			}
			key, err := s.snapshotter.Capture(ctx, serverID, players, chat)
			if err != nil {
				return err
			}
			details = "flagged for review, evidence " + key
		}
	}

	return s.audit.Append(ctx, model.AuditEntry{
		ServerID: serverID,
		Action:   "flag",
		Actor:    actor,
		Details:  details,
		Time:     time.Now().UTC(),
	})
}

func (s *Service) GetServer(ctx context.Context, serverID string) (model.ServerMeta, error) {
	if s.servers == nil {
		return model.ServerMeta{}, fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" {
		return model.ServerMeta{}, ErrInvalidInput
	}

	return s.servers.Get(ctx, serverID)
}

func (s *Service) ListServers(ctx context.Context) ([]model.ServerMeta, error) {
	if s.servers == nil {
		return nil, fmt.Errorf("ingest service dependencies are not configured")
	}

	return s.servers.List(ctx)
}

func (s *Service) GetChat(ctx context.Context, serverID string) ([]model.ChatEntry, error) {
	if s.chat == nil {
		return nil, fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" {
		return nil, ErrInvalidInput
	}

	return s.chat.List(ctx, serverID)
}

func (s *Service) GetRoster(ctx context.Context, serverID string) ([]model.Player, error) {
	if s.roster == nil {
		return nil, fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" {
		return nil, ErrInvalidInput
	}

	return s.roster.List(ctx, serverID)
}

func (s *Service) GetAudit(ctx context.Context, serverID string, limit int) ([]model.AuditEntry, error) {
	if s.audit == nil {
		return nil, fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" {
		return nil, ErrInvalidInput
	}

	return s.audit.ListByServer(ctx, serverID, limit)
}

// DrainOutbox hands pending broadcasts to the polling game server.
func (s *Service) DrainOutbox(ctx context.Context, serverID string) ([]model.OutboundMessage, error) {
	if s.outbox == nil {
		return nil, fmt.Errorf("ingest service dependencies are not configured")
	}
	if serverID == "" {
		return nil, ErrInvalidInput
	}

	return s.outbox.Drain(ctx, serverID)
}
