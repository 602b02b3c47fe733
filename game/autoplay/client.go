package autoplay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/service"
)

// APIError is a non-2xx reply from the game server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the REST API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// CreateSession starts a session; an empty configID uses the server default
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	req := map[string]string{}
	if configID != "" {
		req["config_id"] = configID
	}
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &info, nil
}

// State returns the current state of a session
func (c *Client) State(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

// Move makes one settled move
func (c *Client) Move(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
	var result service.MoveResult
	req := map[string]interface{}{"direction": direction, "settle": true}
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/move"), req, &result); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	return &result, nil
}

// BulkMove makes several settled moves, stopping on collection
func (c *Client) BulkMove(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/bulk-move"), map[string][]string{"moves": moves}, &result); err != nil {
		return nil, fmt.Errorf("bulk move: %w", err)
	}
	return &result, nil
}

// Advance runs the session clock forward by d
func (c *Client) Advance(ctx context.Context, sessionID string, d time.Duration) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/advance"), map[string]int64{"ms": d.Milliseconds()}, &result); err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	return &result, nil
}

// ClosePopup dismisses the note popup
func (c *Client) ClosePopup(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/close-popup"), nil, &result); err != nil {
		return nil, fmt.Errorf("close popup: %w", err)
	}
	return &result, nil
}

// CloseCarousel dismisses the final carousel
func (c *Client) CloseCarousel(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/close-carousel"), nil, &result); err != nil {
		return nil, fmt.Errorf("close carousel: %w", err)
	}
	return &result, nil
}

// Reset restarts the game
func (c *Client) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}
