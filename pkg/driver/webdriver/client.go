// Package webdriver implements core.ScriptExecutor over the W3C WebDriver
// protocol (Selenium Grid, chromedriver, geckodriver).
package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/logger"
)

// DefaultRequestTimeout bounds a single HTTP round trip. Browser start-up on a
// busy grid can take a while.
const DefaultRequestTimeout = 5 * time.Minute

// Client handles HTTP communication with a WebDriver remote end.
type Client struct {
	serverURL string
	client    *http.Client

	mu           sync.RWMutex
	sessionID    string
	capabilities map[string]interface{}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithSession attaches the client to an existing session instead of
// creating one with Connect.
func WithSession(id string) Option {
	return func(c *Client) {
		c.sessionID = id
	}
}

// NewClient creates a client for the remote end at serverURL,
// e.g. "http://localhost:4444" or "http://localhost:4444/wd/hub".
func NewClient(serverURL string, opts ...Option) *Client {
	c := &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client:    &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect creates a new session with the given capabilities.
func (c *Client) Connect(ctx context.Context, capabilities map[string]interface{}) error {
	if capabilities == nil {
		capabilities = map[string]interface{}{}
	}
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}

	resp, err := c.post(ctx, "/session", body)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("create session: invalid response")
	}
	id, _ := value["sessionId"].(string)
	if id == "" {
		// JSON Wire Protocol remote ends put the id next to the value.
		id, _ = resp["sessionId"].(string)
	}
	if id == "" {
		return fmt.Errorf("create session: no session ID in response")
	}
	caps, _ := value["capabilities"].(map[string]interface{})

	c.mu.Lock()
	c.sessionID = id
	c.capabilities = caps
	c.mu.Unlock()

	logger.Info("webdriver session %s created", id)
	return nil
}

// Disconnect deletes the session. It is a no-op without one.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	id := c.sessionID
	c.sessionID = ""
	c.mu.Unlock()

	if id == "" {
		return nil
	}
	_, err := c.request(ctx, http.MethodDelete, "/session/"+id, nil)
	return err
}

// SessionID returns the current session id, or "" when not connected.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Capabilities returns the capabilities the remote end reported.
func (c *Client) Capabilities() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capabilities
}

// Status reports whether the remote end is ready to create sessions.
func (c *Client) Status(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "/status")
	if err != nil {
		return false, err
	}
	value, _ := resp["value"].(map[string]interface{})
	ready, _ := value["ready"].(bool)
	return ready, nil
}

// HTTP Helpers

func (c *Client) sessionPath() (string, error) {
	id := c.SessionID()
	if id == "" {
		return "", core.ErrNoSession
	}
	return "/session/" + id, nil
}

func (c *Client) get(ctx context.Context, path string) (map[string]interface{}, error) {
	return c.request(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	if body == nil {
		body = map[string]interface{}{}
	}
	return c.request(ctx, http.MethodPost, path, body)
}

// session issues a request against the current session.
func (c *Client) session(ctx context.Context, method, path string, body interface{}) (interface{}, error) {
	base, err := c.sessionPath()
	if err != nil {
		return nil, err
	}
	if method == http.MethodPost && body == nil {
		body = map[string]interface{}{}
	}
	resp, err := c.request(ctx, method, base+path, body)
	if err != nil {
		return nil, err
	}
	return resp["value"], nil
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	url := c.serverURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, core.InvalidArgument("args", "cannot be encoded as JSON").WithCause(err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, core.ErrServerUnreachable.
			WithMessage("cannot reach WebDriver at " + c.serverURL).
			WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrServerUnreachable.WithMessage("read response").WithCause(err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if err := responseError(result); err != nil {
		logger.Debug("webdriver %s %s: %v", method, path, err)
		return result, err
	}
	return result, nil
}

