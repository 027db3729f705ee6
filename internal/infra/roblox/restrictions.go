package roblox

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type restrictionPayload struct {
	GameJoinRestriction gameJoinRestriction `json:"gameJoinRestriction"`
}

type gameJoinRestriction struct {
	Active             bool    `json:"active"`
	Duration           *string `json:"duration,omitempty"`
	PrivateReason      string  `json:"privateReason,omitempty"`
	DisplayReason      string  `json:"displayReason,omitempty"`
	ExcludeAltAccounts bool    `json:"excludeAltAccounts"`
}

// Restrict applies a platform-level join restriction to a user in the
// universe. A nil duration means permanent. The raw downstream response is
// returned for the moderation ledger.
func (c *Client) Restrict(ctx context.Context, universeID, userID string, duration *time.Duration, reason string) ([]byte, error) {
	if strings.TrimSpace(universeID) == "" || strings.TrimSpace(userID) == "" {
		return nil, &RequestError{Op: "apply restriction", Err: fmt.Errorf("universe id and user id are required")}
	}

	payload := restrictionPayload{
		GameJoinRestriction: gameJoinRestriction{
			Active:        true,
			PrivateReason: reason,
			DisplayReason: reason,
		},
	}
	if duration != nil {
		seconds := fmt.Sprintf("%ds", int64(duration.Seconds()))
		payload.GameJoinRestriction.Duration = &seconds
	}

	url := fmt.Sprintf("%s/cloud/v2/universes/%s/user-restrictions/%s", c.openCloudURL, universeID, userID)
	return c.doJSON(ctx, http.MethodPatch, url, payload, nil)
}

// Unrestrict clears a platform-level join restriction.
func (c *Client) Unrestrict(ctx context.Context, universeID, userID string) ([]byte, error) {
	if strings.TrimSpace(universeID) == "" || strings.TrimSpace(userID) == "" {
		return nil, &RequestError{Op: "clear restriction", Err: fmt.Errorf("universe id and user id are required")}
	}

	payload := restrictionPayload{
		GameJoinRestriction: gameJoinRestriction{Active: false},
	}

	url := fmt.Sprintf("%s/cloud/v2/universes/%s/user-restrictions/%s", c.openCloudURL, universeID, userID)
	return c.doJSON(ctx, http.MethodPatch, url, payload, nil)
}
