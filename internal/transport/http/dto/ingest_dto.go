package dto

import "time"

type ChatPushRequest struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	ChatMessage string `json:"chat_message"`
}

type ChatEntryResponse struct {
	ID          int64     `json:"id"`
	PlayerID    string    `json:"player_id"`
	Username    string    `json:"username"`
	ChatMessage string    `json:"chat_message"`
	Type        string    `json:"type"`
	Time        time.Time `json:"time"`
}

type ChatListResponse struct {
	Entries []ChatEntryResponse `json:"entries"`
}

type RosterPlayer struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Team     string `json:"team"`
	Left     bool   `json:"left"`
}

type RosterReplaceRequest struct {
	Players []RosterPlayer `json:"players"`
}

type RosterResponse struct {
	Players []RosterPlayer `json:"players"`
}

type NotifyRequest struct {
	Message string `json:"message"`
	Actor   string `json:"actor"`
}

type AuditEntryResponse struct {
	ID      int64     `json:"id"`
	Action  string    `json:"action"`
	Actor   string    `json:"actor"`
	Details string    `json:"details"`
	Time    time.Time `json:"time"`
}

type AuditListResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
}
