package model

import (
	"time"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
)

type ChatEntry struct {
	ID       int64               `json:"id"`
	ServerID string              `json:"server_id"`
	PlayerID string              `json:"player_id"`
	Username string              `json:"username"`
	Message  string              `json:"chat_message"`
	Type     enums.ChatEntryType `json:"type"`
	Time     time.Time           `json:"time"`
}
