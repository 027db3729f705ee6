package roblox

import (
	"bytes"
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
)

type Client struct {
	usersURL      string
	thumbnailsURL string
	groupsURL     string
	openCloudURL  string
	apiKey        string
	httpClient    *http.Client
}

type Config struct {
	UsersURL      string
	ThumbnailsURL string
	GroupsURL     string
	OpenCloudURL  string
	APIKey        string
	Timeout       time.Duration
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
	for _, base := range []string{cfg.UsersURL, cfg.ThumbnailsURL, cfg.GroupsURL, cfg.OpenCloudURL} {
		parsed, err := url.Parse(strings.TrimSpace(base))
		if err != nil {
			return nil, &RequestError{Op: "parse roblox api url", Err: err}
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, &RequestError{Op: "validate roblox api url", Err: fmt.Errorf("invalid url: %s", base)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Client{
		usersURL:      strings.TrimRight(strings.TrimSpace(cfg.UsersURL), "/"),
		thumbnailsURL: strings.TrimRight(strings.TrimSpace(cfg.ThumbnailsURL), "/"),
		groupsURL:     strings.TrimRight(strings.TrimSpace(cfg.GroupsURL), "/"),
		openCloudURL:  strings.TrimRight(strings.TrimSpace(cfg.OpenCloudURL), "/"),
		apiKey:        strings.TrimSpace(cfg.APIKey),
		httpClient:    httpclient.New(timeout),
	}, nil
}

// doJSON issues a request and decodes the response into target. The raw body
// is returned as well so enforcement calls can attach it to the audit ledger.
func (c *Client) doJSON(ctx context.Context, method, fullURL string, payload, target any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &RequestError{Op: "encode request body", Err: err}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, &RequestError{Op: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "do request", Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &RequestError{Op: "read response body", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &RequestError{
			Op:         fmt.Sprintf("%s %s", method, req.URL.Path),
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(raw))),
		}
	}

	if target != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, target); err != nil {
			return raw, &RequestError{Op: "decode response body", StatusCode: resp.StatusCode, Err: err}
		}
	}

	return raw, nil
}
