package enforcement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

var ErrInvalidInput = errors.New("invalid enforcement payload")

// Restrictor is the platform-side ban authority. The raw response body is
// kept verbatim for the ledger.
type Restrictor interface {
	Restrict(ctx context.Context, universeID, userID string, duration *time.Duration, reason string) ([]byte, error)
	Unrestrict(ctx context.Context, universeID, userID string) ([]byte, error)
}

type LedgerStore interface {
	Insert(ctx context.Context, action model.ModerationAction) (int64, error)
	List(ctx context.Context, serverID string, limit, offset int) ([]model.ModerationAction, error)
}

type Config struct {
	UniverseID string
}

// Service applies platform-level bans and keeps the append-only enforcement
// ledger. Every attempt lands in the ledger, fail or succeed; the ledger is
// the record of what staff tried, not only of what worked.
type Service struct {
	restrictor Restrictor
	ledger     LedgerStore
	cfg        Config
	now        func() time.Time
}

type BanRequest struct {
	TargetID      string
	TargetName    string
	ModeratorID   string
	ModeratorName string
	ServerID      string
	BanType       enums.BanType
	Duration      time.Duration
	Reason        string
}

func NewService(restrictor Restrictor, ledger LedgerStore, cfg Config) *Service {
	return &Service{
		restrictor: restrictor,
		ledger:     ledger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Ban restricts the target from the universe and records the outcome. The
// downstream error, if any, is returned after the ledger write so the caller
// can surface it, but the ledger row exists either way.
func (s *Service) Ban(ctx context.Context, req BanRequest) (model.ModerationAction, error) {
	if s.restrictor == nil || s.ledger == nil {
		return model.ModerationAction{}, fmt.Errorf("enforcement service dependencies are not configured")
	}
	if req.TargetID == "" || req.ModeratorID == "" {
		return model.ModerationAction{}, ErrInvalidInput
	}
	if req.BanType == enums.BanTypeTemporary && req.Duration <= 0 {
		return model.ModerationAction{}, ErrInvalidInput
	}

	now := s.now().UTC()

	var duration *time.Duration
	var expiresAt *time.Time
	if req.BanType == enums.BanTypeTemporary {
		duration = &req.Duration
		exp := now.Add(req.Duration)
		expiresAt = &exp
	}

	raw, restrictErr := s.restrictor.Restrict(ctx, s.cfg.UniverseID, req.TargetID, duration, req.Reason)

	action := model.ModerationAction{
		Action:        enums.ActionTypeBan,
		TargetID:      req.TargetID,
		TargetName:    req.TargetName,
		ModeratorID:   req.ModeratorID,
		ModeratorName: req.ModeratorName,
		Scope:         enums.ActionScopeGlobal,
		BanType:       &req.BanType,
		ExpiresAt:     expiresAt,
		Reason:        strings.TrimSpace(req.Reason),
		Status:        enums.ActionStatusSuccess,
		RawResponse:   string(raw),
		CreatedAt:     now,
	}
	if req.ServerID != "" {
		action.ServerID = &req.ServerID
		action.Scope = enums.ActionScopeServer
	}
	if restrictErr != nil {
		action.Status = enums.ActionStatusFailed
		action.RawResponse = restrictErr.Error()
	}

	id, err := s.ledger.Insert(ctx, action)
	if err != nil {
		return model.ModerationAction{}, err
	}
	action.ID = id

	return action, restrictErr
}

// Unban lifts a platform restriction and records the outcome.
func (s *Service) Unban(ctx context.Context, targetID, targetName, moderatorID, moderatorName, reason string) (model.ModerationAction, error) {
	if s.restrictor == nil || s.ledger == nil {
		return model.ModerationAction{}, fmt.Errorf("enforcement service dependencies are not configured")
	}
	if targetID == "" || moderatorID == "" {
		return model.ModerationAction{}, ErrInvalidInput
	}

	raw, restrictErr := s.restrictor.Unrestrict(ctx, s.cfg.UniverseID, targetID)

	action := model.ModerationAction{
		Action:        enums.ActionTypeUnban,
		TargetID:      targetID,
		TargetName:    targetName,
		ModeratorID:   moderatorID,
		ModeratorName: moderatorName,
		Scope:         enums.ActionScopeGlobal,
		Reason:        strings.TrimSpace(reason),
		Status:        enums.ActionStatusSuccess,
		RawResponse:   string(raw),
		CreatedAt:     s.now().UTC(),
	}
	if restrictErr != nil {
		action.Status = enums.ActionStatusFailed
		action.RawResponse = restrictErr.Error()
	}

	id, err := s.ledger.Insert(ctx, action)
	if err != nil {
		return model.ModerationAction{}, err
	}
	action.ID = id

	return action, restrictErr
}

// Record stores an in-game action (kick, mute) that needed no platform call.
func (s *Service) Record(ctx context.Context, action model.ModerationAction) (model.ModerationAction, error) {
	if s.ledger == nil {
		return model.ModerationAction{}, fmt.Errorf("enforcement service dependencies are not configured")
	}
	if action.TargetID == "" || !action.Action.Valid() {
		return model.ModerationAction{}, ErrInvalidInput
	}

	if action.Status == "" {
		action.Status = enums.ActionStatusSuccess
	}
	if action.Scope == "" {
		action.Scope = enums.ActionScopeServer
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = s.now().UTC()
	}

	id, err := s.ledger.Insert(ctx, action)
	if err != nil {
		return model.ModerationAction{}, err
	}
	action.ID = id

	return action, nil
}

// Log reads ledger entries, newest first, optionally narrowed to one server.
func (s *Service) Log(ctx context.Context, serverID string, limit, offset int) ([]model.ModerationAction, error) {
	if s.ledger == nil {
		return nil, fmt.Errorf("enforcement service dependencies are not configured")
	}

	return s.ledger.List(ctx, serverID, limit, offset)
}
