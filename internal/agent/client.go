package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP client for the analytics agent backend.
type Client struct {
	baseURL string
	appName string
	userID  string
	http    *http.Client
	logger  *slog.Logger

	sessionTimeout time.Duration
	queryTimeout   time.Duration
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	BaseURL        string
	AppName        string
	UserID         string
	SessionTimeout time.Duration
	QueryTimeout   time.Duration
}

// NewClient creates a backend client. Timeouts fall back to conservative
// defaults when unset; the backend contract itself specifies none.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 10 * time.Second
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 60 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		appName:        cfg.AppName,
		userID:         cfg.UserID,
		http:           &http.Client{},
		logger:         logger,
		sessionTimeout: cfg.SessionTimeout,
		queryTimeout:   cfg.QueryTimeout,
	}
}

func (c *Client) sessionsURL() string {
	return fmt.Sprintf("%s/apps/%s/users/%s/sessions", c.baseURL, c.appName, c.userID)
}

// CreateSession requests a fresh session from the backend and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.sessionTimeout)
	defer cancel()

	resp, err := c.post(ctx, c.sessionsURL(), []byte("{}"))
	if err != nil {
		return "", &BackendError{Op: "create session", Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &BackendError{Op: "create session", Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	var sess sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return "", &BackendError{Op: "create session", Status: resp.StatusCode, Detail: "malformed response body: " + err.Error()}
	}
	if sess.ID == "" {
		return "", &BackendError{Op: "create session", Status: resp.StatusCode, Detail: "response carried no session id"}
	}

	c.logger.Info("Created backend session", "session_id", sess.ID)
	return sess.ID, nil
}

// ValidateSession probes the backend ping endpoint for a stored session id.
// A false result means the backend rejected the id; an error means the
// backend could not be reached at all.
func (c *Client) ValidateSession(ctx context.Context, sessionID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.sessionTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/ping", c.sessionsURL(), sessionID)
	resp, err := c.post(ctx, url, nil)
	if err != nil {
		return false, &BackendError{Op: "validate session", Detail: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}

// Query sends the user's text under the given session and returns the root
// agent's textual answer. Duplicate parts are dropped preserving first-seen
// order; delegated sub-agent parts are skipped.
func (c *Client) Query(ctx context.Context, sessionID, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	body, err := json.Marshal(runRequest{
		AppName:   c.appName,
		UserID:    c.userID,
		SessionID: sessionID,
		NewMessage: newMessage{
			Role:  "user",
			Parts: []messagePart{{Text: text}},
		},
	})
	if err != nil {
		return "", &BackendError{Op: "query", Detail: "encode request: " + err.Error()}
	}

	start := time.Now()
	resp, err := c.post(ctx, c.baseURL+"/run", body)
	if err != nil {
		return "", &BackendError{Op: "query", Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &BackendError{Op: "query", Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	var events []runEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return "", &BackendError{Op: "query", Status: resp.StatusCode, Detail: "malformed response body: " + err.Error()}
	}

	answer := collectRootText(events)
	c.logger.Debug("Backend query complete",
		"session_id", sessionID,
		"events", len(events),
		"answer_len", len(answer),
		"duration", time.Since(start))
	return answer, nil
}

// collectRootText joins the root agent's text parts with blank lines between
// them, deduplicated in first-seen order.
func collectRootText(events []runEvent) string {
	seen := make(map[string]struct{})
	var parts []string
	for _, ev := range events {
		if ev.Author != rootAgentAuthor {
			continue
		}
		for _, part := range ev.Content.Parts {
			if part.Text == "" || part.Name == semanticAgentName {
				continue
			}
			if _, ok := seen[part.Text]; ok {
				continue
			}
			seen[part.Text] = struct{}{}
			parts = append(parts, part.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (c *Client) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// readDetail extracts a short error detail from a failed response body.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	return strings.TrimSpace(string(data))
}
