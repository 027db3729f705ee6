package model

type Profile struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	IconURL     string `json:"icon_url"`
	Rank        int    `json:"rank"`
	Role        string `json:"role,omitempty"`
}

// FallbackProfile substitutes for a player whose external lookup failed so a
// panel refresh cycle never blocks on one unresolved identity.
func FallbackProfile(playerID string) Profile {
	return Profile{
		PlayerID:    playerID,
		DisplayName: "System",
		IconURL:     "",
		Rank:        0,
	}
}
