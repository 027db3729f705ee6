package model

import (
	"time"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
)

// Command lifecycle: pending -> delivered -> executed | failed. Expired
// deliveries go back to pending; rows are never deleted.
type Command struct {
	CommandID       string              `json:"command_id"`
	ServerID        string              `json:"server_id"`
	Type            enums.CommandType   `json:"type"`
	TargetID        string              `json:"target_id"`
	Reason          string              `json:"reason,omitempty"`
	IssuedBy        string              `json:"issued_by"`
	Status          enums.CommandStatus `json:"status"`
	DeliveryToken   *string             `json:"delivery_token,omitempty"`
	DeliveryExpires *time.Time          `json:"delivery_expires,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	DecidedAt       *time.Time          `json:"decided_at,omitempty"`
}
