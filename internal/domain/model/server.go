package model

import "time"

type ServerMeta struct {
	ServerID  string    `json:"server_id"`
	Flagged   bool      `json:"flagged"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Player struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Team     string `json:"team,omitempty"`
	Left     bool   `json:"left"`
}

type AuditEntry struct {
	ID       int64     `json:"id"`
	ServerID string    `json:"server_id"`
	Action   string    `json:"action"`
	Actor    string    `json:"actor"`
	Details  string    `json:"details,omitempty"`
	Time     time.Time `json:"time"`
}

type OutboundMessage struct {
	ID       int64     `json:"id"`
	ServerID string    `json:"server_id"`
	Message  string    `json:"message"`
	Author   string    `json:"author"`
	Time     time.Time `json:"time"`
}
