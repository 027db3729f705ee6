package dto

import "time"

type EnqueueCommandRequest struct {
	Type     string `json:"type"`
	TargetID string `json:"target_id"`
	Reason   string `json:"reason"`
	IssuedBy string `json:"issued_by"`
}

type CommandResponse struct {
	CommandID string     `json:"command_id"`
	ServerID  string     `json:"server_id"`
	Type      string     `json:"type"`
	TargetID  string     `json:"target_id"`
	Reason    string     `json:"reason"`
	IssuedBy  string     `json:"issued_by"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type OutboundMessageResponse struct {
	ID      int64     `json:"id"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Time    time.Time `json:"time"`
}

type PollResponse struct {
	DeliveryToken string                    `json:"delivery_token,omitempty"`
	Commands      []CommandResponse         `json:"commands"`
	Messages      []OutboundMessageResponse `json:"messages"`
}

type AckRequest struct {
	DeliveryToken string `json:"delivery_token"`
	Result        string `json:"result"`
}

type CommandHistoryResponse struct {
	Commands []CommandResponse `json:"commands"`
}
