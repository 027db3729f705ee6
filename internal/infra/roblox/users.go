package roblox

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type UserInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type thumbnailResponse struct {
	Data []struct {
		TargetID int64  `json:"targetId"`
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

// GetUser resolves a user id to its account info via the users API.
func (c *Client) GetUser(ctx context.Context, userID string) (UserInfo, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return UserInfo{}, &RequestError{Op: "get user", Err: fmt.Errorf("user id is empty")}
	}

	var info UserInfo
	url := fmt.Sprintf("%s/v1/users/%s", c.usersURL, trimmed)
	if _, err := c.doJSON(ctx, http.MethodGet, url, nil, &info); err != nil {
		return UserInfo{}, err
	}
	return info, nil
}

// GetHeadshotURL returns the avatar headshot URL for a user id. An empty
// string comes back when the thumbnail is still generating.
func (c *Client) GetHeadshotURL(ctx context.Context, userID string) (string, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return "", &RequestError{Op: "get headshot", Err: fmt.Errorf("user id is empty")}
	}

	var resp thumbnailResponse
	url := fmt.Sprintf("%s/v1/users/avatar-headshot?userIds=%s&size=150x150&format=Png", c.thumbnailsURL, trimmed)
	if _, err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", err
	}

	for _, item := range resp.Data {
		if item.State == "Completed" {
			return item.ImageURL, nil
		}
	}
	return "", nil
}

type groupRolesResponse struct {
	Data []struct {
		Group struct {
			ID int64 `json:"id"`
		} `json:"group"`
		Role struct {
			Name string `json:"name"`
			Rank int    `json:"rank"`
		} `json:"role"`
	} `json:"data"`
}

// GetGroupRole returns the user's role name and rank in the group. A user who
// is not a member comes back as rank 0 with an empty role name.
func (c *Client) GetGroupRole(ctx context.Context, userID, groupID string) (string, int, error) {
	trimmedUser := strings.TrimSpace(userID)
	trimmedGroup := strings.TrimSpace(groupID)
	if trimmedUser == "" || trimmedGroup == "" {
		return "", 0, &RequestError{Op: "get group role", Err: fmt.Errorf("user id and group id are required")}
	}

	var resp groupRolesResponse
	url := fmt.Sprintf("%s/v2/users/%s/groups/roles", c.groupsURL, trimmedUser)
	if _, err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", 0, err
	}

	for _, item := range resp.Data {
		if strconv.FormatInt(item.Group.ID, 10) == trimmedGroup {
			return item.Role.Name, item.Role.Rank, nil
		}
	}
	return "", 0, nil
}
