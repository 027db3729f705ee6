package dto

import "time"

type BanRequest struct {
	TargetID        string `json:"target_id"`
	TargetName      string `json:"target_name"`
	ModeratorID     string `json:"moderator_id"`
	ModeratorName   string `json:"moderator_name"`
	ServerID        string `json:"server_id,omitempty"`
	BanType         string `json:"ban_type"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	Reason          string `json:"reason"`
}

type UnbanRequest struct {
	TargetID      string `json:"target_id"`
	TargetName    string `json:"target_name"`
	ModeratorID   string `json:"moderator_id"`
	ModeratorName string `json:"moderator_name"`
	Reason        string `json:"reason"`
}

type ModerationActionResponse struct {
	ID            int64      `json:"id"`
	Action        string     `json:"action"`
	TargetID      string     `json:"target_id"`
	TargetName    string     `json:"target_name"`
	ModeratorID   string     `json:"moderator_id"`
	ModeratorName string     `json:"moderator_name"`
	ServerID      *string    `json:"server_id,omitempty"`
	Scope         string     `json:"scope"`
	BanType       *string    `json:"ban_type,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ModerationLogResponse struct {
	Actions []ModerationActionResponse `json:"actions"`
}
