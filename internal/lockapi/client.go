package lockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client talks to the lock backend HTTP API.
type Client struct {
	mu        sync.RWMutex
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL   = "http://localhost:8000"
	defaultUserAgent = "lockdash/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for the given backend base URL.
func NewClient(baseURL string) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the current backend endpoint.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL.String()
}

// SetBaseURL points subsequent requests at a new backend endpoint.
func (c *Client) SetBaseURL(raw string) error {
	base, err := ParseBaseURL(raw)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.baseURL = base
	c.mu.Unlock()
	return nil
}

// GetState retrieves the current mode and door status.
func (c *Client) GetState(ctx context.Context) (SystemState, error) {
	var payload SystemState
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &payload); err != nil {
		return SystemState{}, err
	}
	return payload, nil
}

// GetDetailedStatus retrieves the extended state view.
func (c *Client) GetDetailedStatus(ctx context.Context) (DetailedStatus, error) {
	var payload DetailedStatus
	if err := c.do(ctx, http.MethodGet, "/api/state/status", nil, &payload); err != nil {
		return DetailedStatus{}, err
	}
	return payload, nil
}

// SetMode switches the lock's operating mode.
func (c *Client) SetMode(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q", mode)
	}
	body := map[string]Mode{"mode": mode}
	return c.do(ctx, http.MethodPost, "/api/state/mode", body, nil)
}

// SetDoor sends a lock or unlock command to the device.
func (c *Client) SetDoor(ctx context.Context, status DoorStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid door status %q", status)
	}
	body := map[string]DoorStatus{"status": status}
	return c.do(ctx, http.MethodPost, "/api/state/door", body, nil)
}

// Health calls the backend health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var payload Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &payload); err != nil {
		return Health{}, err
	}
	return payload, nil
}

// GetConfig retrieves the full runtime configuration.
func (c *Client) GetConfig(ctx context.Context) (RuntimeConfig, error) {
	var payload RuntimeConfig
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &payload); err != nil {
		return RuntimeConfig{}, err
	}
	return payload, nil
}

// UpdateConfig applies a partial configuration and returns the server-confirmed result.
func (c *Client) UpdateConfig(ctx context.Context, update ConfigUpdate) (ConfigUpdateResponse, error) {
	var payload ConfigUpdateResponse
	if err := c.do(ctx, http.MethodPost, "/api/config/update", update, &payload); err != nil {
		return ConfigUpdateResponse{}, err
	}
	return payload, nil
}

// GetStats retrieves aggregate access statistics for the last days days.
func (c *Client) GetStats(ctx context.Context, days int) (AccessStats, error) {
	values := url.Values{}
	if days > 0 {
		values.Set("days", strconv.Itoa(days))
	}
	rel := &url.URL{Path: "/api/logs/stats", RawQuery: values.Encode()}
	var payload AccessStats
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return AccessStats{}, err
	}
	return payload, nil
}

// GetLogs retrieves access logs matching query.
func (c *Client) GetLogs(ctx context.Context, query LogQuery) (LogPage, error) {
	values := url.Values{}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	if method := strings.TrimSpace(query.Method); method != "" {
		values.Set("method", method)
	}
	if accessType := strings.TrimSpace(query.AccessType); accessType != "" {
		values.Set("access_type", accessType)
	}
	if query.Success != nil {
		values.Set("success", strconv.FormatBool(*query.Success))
	}
	rel := &url.URL{Path: "/api/logs", RawQuery: values.Encode()}
	var payload LogPage
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return LogPage{}, err
	}
	return payload, nil
}

// DeleteLog removes a single access log.
func (c *Client) DeleteLog(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/logs/"+strconv.FormatInt(id, 10), nil, nil)
}

// ClearLogs removes all access logs.
func (c *Client) ClearLogs(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/logs/clear-all", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	c.mu.RLock()
	reqURL := c.baseURL.JoinPath(rel.Path)
	c.mu.RUnlock()
	reqURL.RawQuery = rel.RawQuery

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return newAPIError(method, rel.Path, resp)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ParseBaseURL normalizes a backend endpoint. Bare host:port values get an
// http scheme; a path prefix is kept without its trailing slash, query and
// fragment are dropped.
func ParseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("parse base url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
