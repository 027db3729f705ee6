package dto

type ProfileResponse struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	IconURL     string `json:"icon_url,omitempty"`
	Rank        int    `json:"rank"`
	Role        string `json:"role,omitempty"`
}
