package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CodeCommander07/flat-studios-sub002/internal/infra/httpclient"
	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
)

// Client talks to the staff API on behalf of the dashboard. All requests
// carry the staff bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewClient(cfg Config) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, &RequestError{Op: "parse panel api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate panel api url", Err: fmt.Errorf("invalid url: %s", cfg.BaseURL)}
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, &RequestError{Op: "validate panel token", Err: errors.New("staff token is empty")}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      cfg.Token,
		httpClient: httpclient.New(timeout),
	}, nil
}

func (c *Client) ListServers(ctx context.Context) ([]dto.ServerResponse, error) {
	var resp dto.ServerListResponse
	if err := c.getJSON(ctx, "/api/servers", &resp); err != nil {
		return nil, err
	}
	return resp.Servers, nil
}

func (c *Client) GetServer(ctx context.Context, serverID string) (dto.ServerResponse, error) {
	var resp dto.ServerResponse
	if err := c.getJSON(ctx, "/api/servers/"+url.PathEscape(serverID), &resp); err != nil {
		return dto.ServerResponse{}, err
	}
	return resp, nil
}

func (c *Client) GetRoster(ctx context.Context, serverID string) ([]dto.RosterPlayer, error) {
	var resp dto.RosterResponse
	if err := c.getJSON(ctx, "/api/servers/"+url.PathEscape(serverID)+"/roster", &resp); err != nil {
		return nil, err
	}
	return resp.Players, nil
}

func (c *Client) GetChat(ctx context.Context, serverID string) ([]dto.ChatEntryResponse, error) {
	var resp dto.ChatListResponse
	if err := c.getJSON(ctx, "/api/servers/"+url.PathEscape(serverID)+"/chat", &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) GetAudit(ctx context.Context, serverID string) ([]dto.AuditEntryResponse, error) {
	var resp dto.AuditListResponse
	if err := c.getJSON(ctx, "/api/servers/"+url.PathEscape(serverID)+"/audit", &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) GetProfile(ctx context.Context, playerID string) (dto.ProfileResponse, error) {
	var resp dto.ProfileResponse
	if err := c.getJSON(ctx, "/api/profiles/"+url.PathEscape(playerID), &resp); err != nil {
		return dto.ProfileResponse{}, err
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	op := "GET " + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &RequestError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	return nil
}
