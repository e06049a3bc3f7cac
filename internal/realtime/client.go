package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// EventPath is appended to the backend base URL to form the socket URL.
	EventPath = "/ws"

	defaultRetryDelay = 3 * time.Second
	defaultPingPeriod = 30 * time.Second
	defaultPongWait   = 60 * time.Second
	handshakeTimeout  = 10 * time.Second
	writeWait         = 10 * time.Second
	maxMessageSize    = 1024 * 1024
)

// ErrNotConnected is returned by Send when the message was dropped because
// no connection is open.
var ErrNotConnected = errors.New("realtime: not connected")

// Status is the connection state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Handler receives every inbound message while subscribed.
type Handler func(Message)

// Conn is the subset of *websocket.Conn the client uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// DialFunc opens a connection to url.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// Stats is a point-in-time view of the connection lifecycle.
type Stats struct {
	Status       Status
	URL          string
	Attempts     int // dial attempts started
	Retries      int // scheduled retries that fired
	RetryPending bool
	Subscribers  int
}

// Client owns a single push-event connection to the backend and fans
// inbound messages out to subscribers. It reconnects on a fixed delay until
// Close is called.
type Client struct {
	mu         sync.Mutex
	url        string
	dial       DialFunc
	retryDelay time.Duration
	pingPeriod time.Duration
	pongWait   time.Duration
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	status     Status
	started    bool
	closed     bool
	generation uint64
	sess       *session
	retry      *time.Timer
	retryToken uint64
	attempts   int
	retries    int

	subs registry
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the gorilla/websocket dialer.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// WithRetryDelay sets the fixed delay between a disconnect and the next attempt.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithPingPeriod sets the keepalive interval. Zero disables pings.
func WithPingPeriod(d time.Duration) Option {
	return func(c *Client) {
		c.pingPeriod = d
	}
}

// WithPongWait sets how long the connection may stay silent before it is
// considered dead. Any inbound frame or pong extends the deadline. It only
// applies while pings are enabled.
func WithPongWait(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pongWait = d
		}
	}
}

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a Client for the backend at baseURL. It does not connect.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	socketURL, err := SocketURL(baseURL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		url:        socketURL,
		dial:       defaultDial,
		retryDelay: defaultRetryDelay,
		pingPeriod: defaultPingPeriod,
		pongWait:   defaultPongWait,
		logger:     zerolog.Nop(),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "realtime").Logger()
	return c, nil
}

// SocketURL derives the push-event endpoint from a backend base URL:
// http becomes ws, https becomes wss, and /ws is appended to the base path
// so a proxy prefix such as /lock is kept.
func SocketURL(baseURL string) (string, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return "", fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("parse base url %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse base url %q: missing host", baseURL)
	}
	u.Path = path.Join("/", u.Path, EventPath)
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// URL returns the socket endpoint.
func (c *Client) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Stats returns lifecycle counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Status:       c.status,
		URL:          c.url,
		Attempts:     c.attempts,
		Retries:      c.retries,
		RetryPending: c.retry != nil,
		Subscribers:  c.subs.len(),
	}
}

// Connect starts a connection attempt unless one is already open or in
// progress. It returns immediately; the handshake happens in the background.
func (c *Client) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
	c.connectLocked()
}

func (c *Client) connectLocked() {
	if c.closed || c.status != StatusDisconnected {
		return
	}
	c.stopRetryLocked()
	c.discardSessionLocked()

	c.generation++
	c.attempts++
	c.status = StatusConnecting
	gen, target := c.generation, c.url
	c.logger.Debug().Str("url", target).Int("attempt", c.attempts).Msg("connecting")
	go c.dialAttempt(gen, target)
}

func (c *Client) dialAttempt(gen uint64, target string) {
	conn, err := c.dial(c.ctx, target)

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.status = StatusDisconnected
		c.logger.Warn().Err(err).Str("url", target).Dur("retry_in", c.retryDelay).Msg("connect failed")
		c.scheduleRetryLocked()
		c.mu.Unlock()
		return
	}

	sess := newSession(conn)
	if c.pingPeriod > 0 {
		if err := sess.watchLiveness(c.pongWait); err != nil {
			c.status = StatusDisconnected
			c.logger.Warn().Err(err).Str("url", target).Msg("set read deadline")
			sess.close()
			c.scheduleRetryLocked()
			c.mu.Unlock()
			return
		}
	}
	c.sess = sess
	c.status = StatusConnected
	c.stopRetryLocked()
	c.logger.Info().Str("url", target).Str("session", sess.id).Msg("connected")
	c.mu.Unlock()

	go c.readLoop(sess)
	if c.pingPeriod > 0 {
		go c.keepalive(sess)
	}
}

func (c *Client) scheduleRetryLocked() {
	if c.closed || c.retry != nil {
		return
	}
	c.retryToken++
	token := c.retryToken
	c.retry = time.AfterFunc(c.retryDelay, func() { c.fireRetry(token) })
}

func (c *Client) fireRetry(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retry == nil || token != c.retryToken {
		return
	}
	c.retry = nil
	c.retries++
	c.logger.Debug().Int("retry", c.retries).Msg("reconnecting")
	c.connectLocked()
}

func (c *Client) stopRetryLocked() {
	if c.retry == nil {
		return
	}
	c.retry.Stop()
	c.retry = nil
	c.retryToken++
}

func (c *Client) discardSessionLocked() {
	if c.sess == nil {
		return
	}
	c.sess.close()
	c.sess = nil
}

// dropSession tears down sess after a read or write failure and schedules
// a reconnect. Stale sessions are ignored.
func (c *Client) dropSession(sess *session, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	c.sess = nil
	sess.close()
	c.status = StatusDisconnected
	if c.closed {
		return
	}
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.logger.Warn().Err(err).Str("session", sess.id).Msg("connection lost")
	} else {
		c.logger.Info().Err(err).Str("session", sess.id).Msg("disconnected")
	}
	c.scheduleRetryLocked()
}

func (c *Client) readLoop(sess *session) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			c.dropSession(sess, err)
			return
		}
		if err := sess.extendDeadline(); err != nil {
			c.dropSession(sess, err)
			return
		}
		msg, err := decodeMessage(data)
		if err != nil {
			c.logger.Debug().Err(err).Int("bytes", len(data)).Msg("dropping malformed frame")
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) keepalive(sess *session) {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			if err := sess.ping(); err != nil {
				c.dropSession(sess, err)
				return
			}
		}
	}
}

func (c *Client) dispatch(msg Message) {
	for _, h := range c.subs.snapshot() {
		c.deliver(h, msg)
	}
}

func (c *Client) deliver(h Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("type", msg.Type).Msg("subscriber panicked")
		}
	}()
	h(msg)
}

// Send writes msg if the connection is open. Otherwise the message is
// dropped and ErrNotConnected is returned.
func (c *Client) Send(msg Message) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	if sess == nil {
		c.logger.Warn().Str("type", msg.Type).Msg("not connected, dropping outbound message")
		return ErrNotConnected
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := sess.write(data); err != nil {
		c.dropSession(sess, err)
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Subscribe registers h for every future message. The returned function
// removes exactly this registration and is safe to call more than once.
func (c *Client) Subscribe(h Handler) (unsubscribe func()) {
	return c.subs.add(h)
}

// SetBaseURL switches the backend endpoint. An open or pending connection
// is dropped and a new attempt starts against the new URL.
func (c *Client) SetBaseURL(baseURL string) error {
	socketURL, err := SocketURL(baseURL)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if socketURL == c.url {
		return nil
	}
	c.url = socketURL
	c.logger.Info().Str("url", socketURL).Msg("endpoint changed")
	if !c.started || c.closed {
		return nil
	}
	c.stopRetryLocked()
	c.discardSessionLocked()
	// Invalidate any in-flight dial.
	c.generation++
	c.status = StatusDisconnected
	c.connectLocked()
	return nil
}

// Close cancels any pending retry, closes the open connection and ends the
// client's lifecycle.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	c.stopRetryLocked()
	c.discardSessionLocked()
	c.status = StatusDisconnected
	c.logger.Debug().Msg("closed")
	return nil
}

// session wraps one live connection. gorilla/websocket allows one
// concurrent writer, so writes are serialized.
type session struct {
	id       string
	conn     Conn
	pongWait time.Duration
	writeMu  sync.Mutex
	once     sync.Once
	done     chan struct{}
}

func newSession(conn Conn) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		done: make(chan struct{}),
	}
}

// watchLiveness arms a read deadline that pongs and inbound frames push
// forward. A peer that stops answering pings fails the next read.
func (s *session) watchLiveness(pongWait time.Duration) error {
	s.pongWait = pongWait
	s.conn.SetPongHandler(func(string) error {
		return s.extendDeadline()
	})
	return s.extendDeadline()
}

func (s *session) extendDeadline() error {
	if s.pongWait <= 0 {
		return nil
	}
	return s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
}

func (s *session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func defaultDial(ctx context.Context, target string) (Conn, error) {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = handshakeTimeout
	header := http.Header{}
	header.Set("User-Agent", "lockdash/0.1")
	conn, resp, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	conn.SetReadLimit(maxMessageSize)
	return conn, nil
}
