package dto

import "time"

type ServerResponse struct {
	ServerID  string    `json:"server_id"`
	Flagged   bool      `json:"flagged"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ServerListResponse struct {
	Servers []ServerResponse `json:"servers"`
}

type FlagRequest struct {
	Flagged bool   `json:"flagged"`
	Actor   string `json:"actor"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
