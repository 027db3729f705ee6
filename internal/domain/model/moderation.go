package model

import (
	"time"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
)

// ModerationAction is one row of the append-only enforcement ledger. Rows are
// written for failed downstream calls too, with Status carrying the outcome.
type ModerationAction struct {
	ID            int64              `json:"id"`
	Action        enums.ActionType   `json:"action"`
	TargetID      string             `json:"target_id"`
	TargetName    string             `json:"target_name,omitempty"`
	ModeratorID   string             `json:"moderator_id"`
	ModeratorName string             `json:"moderator_name,omitempty"`
	ServerID      *string            `json:"server_id,omitempty"`
	Scope         enums.ActionScope  `json:"scope"`
	BanType       *enums.BanType     `json:"ban_type,omitempty"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	Status        enums.ActionStatus `json:"status"`
	RawResponse   string             `json:"raw_response,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}
