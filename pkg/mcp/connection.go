package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Status is a Connection's position in the handshake state machine (spec
// §4.8): disconnected -> connecting -> initializing -> ready, with any
// state able to fall back to disconnected on transport death.
type Status int32

// Status values.
const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusInitializing
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusInitializing:
		return "initializing"
	case StatusReady:
		return "ready"
	default:
		return "disconnected"
	}
}

// NotificationHandler receives every inbound notification, including
// progress and log messages, which are also passed to their own typed
// callbacks below first.
type NotificationHandler func(method string, params json.RawMessage)

// ProgressHandler receives notifications/progress.
type ProgressHandler func(token string, progress, total float64)

// LogHandler receives notifications/message (the server's log stream).
type LogHandler func(level string, logger string, data json.RawMessage)

// ConnectionOption configures a Connection at construction time.
type ConnectionOption func(*Connection)

// WithClientInfo sets the client identity sent during initialize.
func WithClientInfo(info Info) ConnectionOption {
	return func(c *Connection) { c.clientInfo = info }
}

// WithClientCapabilities overrides the default client capability set.
func WithClientCapabilities(caps ClientCapabilities) ConnectionOption {
	return func(c *Connection) { c.clientCaps = caps }
}

// WithDefaultTimeout sets the per-request timeout used when a call site
// does not override it with RequestTimeout.
func WithDefaultTimeout(d time.Duration) ConnectionOption {
	return func(c *Connection) { c.defaultTimeout = d }
}

// WithInitializeTimeout sets how long Start waits for the server's
// initialize response before failing the handshake.
func WithInitializeTimeout(d time.Duration) ConnectionOption {
	return func(c *Connection) { c.initTimeout = d }
}

// WithNotificationHandler installs the catch-all inbound notification
// callback.
func WithNotificationHandler(h NotificationHandler) ConnectionOption {
	return func(c *Connection) { c.notificationHandler = h }
}

// WithProgressHandler installs the notifications/progress callback.
func WithProgressHandler(h ProgressHandler) ConnectionOption {
	return func(c *Connection) { c.progressHandler = h }
}

// WithLogHandler installs the notifications/message callback.
func WithLogHandler(h LogHandler) ConnectionOption {
	return func(c *Connection) { c.logHandler = h }
}

// WithRequiredServerCapabilities makes Start fail the handshake if the
// server's initialize result does not satisfy every listed capability.
func WithRequiredServerCapabilities(caps ...RequiredCapability) ConnectionOption {
	return func(c *Connection) { c.requiredCaps = caps }
}

// WithPingInterval enables a background keep-alive ping loop once the
// Connection is ready. Zero (the default) disables it.
func WithPingInterval(d time.Duration) ConnectionOption {
	return func(c *Connection) { c.pingInterval = d }
}

// WithLogger overrides the structured logger used for background
// failures that have no caller to return an error to.
func WithLogger(l *slog.Logger) ConnectionOption {
	return func(c *Connection) { c.logger = l }
}

// WithMaxFrameBytes overrides the Message Buffer's retained-bytes cap
// used by transports that read through one (the Stdio transport).
func WithMaxFrameBytes(n int) ConnectionOption {
	return func(c *Connection) { c.maxFrameBytes = n }
}

// Connection drives one peer's handshake and request/response
// correlation over a single Transport (spec §4.8).
type Connection struct {
	transport  Transport
	clientInfo Info
	clientCaps ClientCapabilities

	defaultTimeout time.Duration
	initTimeout    time.Duration
	pingInterval   time.Duration
	maxFrameBytes  int
	requiredCaps   []RequiredCapability

	notificationHandler NotificationHandler
	progressHandler     ProgressHandler
	logHandler          LogHandler

	logger  *slog.Logger
	tracker *Tracker

	mu              sync.RWMutex
	status          Status
	protocolVersion string
	serverInfo      Info
	serverCaps      ServerCapabilities

	cancelLoop context.CancelFunc
	loopDone   chan struct{}
}

// NewConnection constructs a Connection over transport. The Connection is
// disconnected until Start is called.
func NewConnection(transport Transport, opts ...ConnectionOption) *Connection {
	c := &Connection{
		transport:      transport,
		clientCaps:     DefaultClientCapabilities(),
		defaultTimeout: 30 * time.Second,
		initTimeout:    10 * time.Second,
		logger:         slog.Default(),
		tracker:        NewTracker(),
		status:         StatusDisconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	if st, ok := transport.(*StdioTransport); ok && c.maxFrameBytes > 0 {
		st.maxFrameBytes = c.maxFrameBytes
	}
	return c
}

// Status reports the Connection's current state.
func (c *Connection) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Connection) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// ServerInfo reports the peer identity learned during initialize. It is
// only meaningful once Status is StatusReady.
func (c *Connection) ServerInfo() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// ServerCapabilities reports the peer's advertised capabilities. It is
// only meaningful once Status is StatusReady.
func (c *Connection) ServerCapabilities() ServerCapabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverCaps
}

// ProtocolVersion reports the version string the server returned during
// initialize.
func (c *Connection) ProtocolVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.protocolVersion
}

// PendingCount reports the number of outstanding requests, used by Pool's
// least-busy selection strategy.
func (c *Connection) PendingCount() int {
	return c.tracker.Pending()
}

// Start transitions the Connection from disconnected through connecting
// and initializing to ready, blocking until the handshake completes or
// fails. On failure the Connection returns to disconnected.
func (c *Connection) Start(ctx context.Context) error {
	if c.Status() != StatusDisconnected {
		return fmt.Errorf("mcp: connection not disconnected (current status %s)", c.Status())
	}
	c.setStatus(StatusConnecting)

	events, err := c.transport.Start(ctx)
	if err != nil {
		c.setStatus(StatusDisconnected)
		return fmt.Errorf("mcp: transport start: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancelLoop = cancel
	c.loopDone = make(chan struct{})
	go c.loop(loopCtx, events)

	if err := c.handshake(ctx); err != nil {
		c.Disconnect()
		return err
	}
	return nil
}

// handshake drives initialize to completion, entirely through the request
// path the main loop also uses. It sends initialize as soon as the
// transport's Start has returned and does not wait for an EventReady.
func (c *Connection) handshake(ctx context.Context) error {
	hctx, hcancel := context.WithTimeout(ctx, c.initTimeout)
	defer hcancel()

	c.setStatus(StatusInitializing)
	method, params := BuildInitialize(LatestProtocolVersion, c.clientCaps, c.clientInfo)
	raw, err := c.request(hctx, method, params, c.initTimeout)
	if err != nil {
		return fmt.Errorf("mcp: initialize: %w", err)
	}

	var result InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("mcp: decode initialize result: %w", err)
	}

	for _, req := range c.requiredCaps {
		if !req.Satisfied(result.Capabilities) {
			return fmt.Errorf("mcp: server missing required capability %q", req)
		}
	}

	c.mu.Lock()
	c.protocolVersion = result.ProtocolVersion
	c.serverInfo = result.ServerInfo
	c.serverCaps = result.Capabilities
	c.mu.Unlock()

	notifyMethod, notifyParams := BuildInitializedNotification()
	if err := c.notify(ctx, notifyMethod, notifyParams); err != nil {
		return fmt.Errorf("mcp: send initialized notification: %w", err)
	}

	c.setStatus(StatusReady)
	if c.pingInterval > 0 {
		go c.pingLoop(context.Background())
	}
	return nil
}

// RequestOption overrides per-call Request behavior.
type RequestOption func(*requestConfig)

type requestConfig struct {
	timeout time.Duration
}

// RequestTimeout overrides the Connection's default per-request timeout
// for a single call.
func RequestTimeout(d time.Duration) RequestOption {
	return func(cfg *requestConfig) { cfg.timeout = d }
}

// Request sends method/params as a JSON-RPC request and blocks until a
// response arrives, the request's timeout elapses, or ctx is cancelled.
// It requires the Connection to be ready.
func (c *Connection) Request(ctx context.Context, method string, params any, opts ...RequestOption) (json.RawMessage, error) {
	if c.Status() != StatusReady {
		return nil, fmt.Errorf("mcp: connection not ready (current status %s)", c.Status())
	}
	cfg := requestConfig{timeout: c.defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return c.request(ctx, method, params, cfg.timeout)
}

func (c *Connection) request(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	id, waiter := c.tracker.Track(method, timeout)

	frame, err := EncodeRequest(id, method, params)
	if err != nil {
		c.tracker.Fail(id, err)
		return nil, fmt.Errorf("mcp: encode request: %w", err)
	}
	if err := c.transport.Send(ctx, frame); err != nil {
		c.tracker.Fail(id, err)
		return nil, fmt.Errorf("mcp: send request: %w", err)
	}

	select {
	case outcome := <-waiter:
		return outcome.Result, outcome.Err
	case <-ctx.Done():
		c.tracker.Cancel(id)
		cancelMethod, cancelParams := BuildCancelledNotification(fmt.Sprintf("%d", id), ctx.Err().Error())
		_ = c.notify(context.Background(), cancelMethod, cancelParams)
		return nil, NewRequestCancelledError(method)
	}
}

// Notify sends method/params as a JSON-RPC notification. It requires the
// Connection to be ready (spec's Decided Open Question #1: notify's
// precondition stays ready, matching the source, rather than also
// permitting the initializing state).
func (c *Connection) Notify(ctx context.Context, method string, params any) error {
	if c.Status() != StatusReady {
		return fmt.Errorf("mcp: connection not ready (current status %s)", c.Status())
	}
	return c.notify(ctx, method, params)
}

func (c *Connection) notify(ctx context.Context, method string, params any) error {
	frame, err := EncodeNotification(method, params)
	if err != nil {
		return fmt.Errorf("mcp: encode notification: %w", err)
	}
	if err := c.transport.Send(ctx, frame); err != nil {
		return fmt.Errorf("mcp: send notification: %w", err)
	}
	return nil
}

// Disconnect tears down the transport and the dispatch loop, bulk-failing
// any outstanding requests. It is safe to call more than once.
func (c *Connection) Disconnect() error {
	prev := c.Status()
	c.setStatus(StatusDisconnected)
	if c.cancelLoop != nil {
		c.cancelLoop()
	}
	err := c.transport.Close()
	if prev != StatusDisconnected {
		c.tracker.FailAll(NewConnectionClosedError("disconnect"))
	}
	if c.loopDone != nil {
		<-c.loopDone
	}
	return err
}

func (c *Connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Status() != StatusReady {
				return
			}
			pctx, cancel := context.WithTimeout(context.Background(), c.defaultTimeout)
			method, params := BuildPing()
			if _, err := c.request(pctx, method, params, c.defaultTimeout); err != nil {
				c.logger.Warn("mcp: keep-alive ping failed", slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

// loop is the Connection's single serial dispatch goroutine: it owns all
// reads from the transport's event channel and is the only writer of
// server-initiated responses and notification dispatch.
func (c *Connection) loop(ctx context.Context, events <-chan Event) {
	defer close(c.loopDone)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case EventReady:
				// Handshake is driven from Start/handshake, not here;
				// Ready events are ignored.
			case EventMessage:
				c.handleFrame(ev.Frame)
			case EventError:
				c.logger.Warn("mcp: transport error", slog.String("error", errString(ev.Err)))
			case EventClosed:
				c.tracker.FailAll(NewConnectionClosedError(ev.Reason))
				c.setStatus(StatusDisconnected)
				return
			}
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (c *Connection) handleFrame(frame json.RawMessage) {
	msg, kind, err := Decode(frame)
	if err != nil {
		c.logger.Warn("mcp: failed to decode frame", slog.String("error", err.Error()))
		return
	}
	switch kind {
	case KindSuccessResponse:
		if key, ok := IDKey(msg.ID); ok {
			c.deliverByKey(key, Outcome{Result: msg.Result})
		}
	case KindErrorResponse:
		if key, ok := IDKey(msg.ID); ok {
			c.deliverByKey(key, Outcome{Err: msg.Error})
		}
	case KindNotification:
		c.dispatchNotification(msg.Method, msg.Params)
	case KindRequest:
		c.handleServerRequest(msg)
	default:
		c.logger.Warn("mcp: received unrecognized JSON-RPC shape")
	}
}

// deliverByKey resolves a string correlation key back into the numeric ID
// this client allocated and routes the outcome through the Tracker.
// Servers always echo the id this client sent, so the numeric form always
// parses even though the codec accepts a string id on decode too.
func (c *Connection) deliverByKey(key string, o Outcome) {
	var id uint64
	if _, err := fmt.Sscanf(key, "%d", &id); err != nil {
		c.logger.Warn("mcp: response id is not numeric", slog.String("id", key))
		return
	}
	if o.Err != nil {
		c.tracker.Fail(id, o.Err)
		return
	}
	c.tracker.Complete(id, o.Result)
}

func (c *Connection) dispatchNotification(method string, params json.RawMessage) {
	switch method {
	case MethodNotificationsProgress:
		if c.progressHandler != nil {
			var p struct {
				ProgressToken string  `json:"progressToken"`
				Progress      float64 `json:"progress"`
				Total         float64 `json:"total"`
			}
			if err := json.Unmarshal(params, &p); err == nil {
				c.progressHandler(p.ProgressToken, p.Progress, p.Total)
			}
		}
	case MethodNotificationsMessage:
		if c.logHandler != nil {
			var p struct {
				Level  string          `json:"level"`
				Logger string          `json:"logger"`
				Data   json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(params, &p); err == nil {
				c.logHandler(p.Level, p.Logger, p.Data)
			}
		}
	default:
	}
	if c.notificationHandler != nil {
		c.notificationHandler(method, params)
	}
}

// handleServerRequest auto-answers the narrow set of requests a server is
// allowed to send a client. Everything outside that set, including
// sampling/createMessage, is declined with method-not-found (spec
// Non-goals: the sampling capability is not implemented).
func (c *Connection) handleServerRequest(msg *Message) {
	var (
		result any
		rpcErr *Error
	)
	switch msg.Method {
	case MethodPing:
		result = struct{}{}
	case MethodRootsList:
		result = struct {
			Roots []any `json:"roots"`
		}{Roots: []any{}}
	default:
		rpcErr = NewMethodNotFoundError(msg.Method)
	}

	var frame []byte
	var err error
	if rpcErr != nil {
		frame, err = EncodeError(msg.ID, rpcErr)
	} else {
		frame, err = EncodeSuccess(msg.ID, result)
	}
	if err != nil {
		c.logger.Error("mcp: failed to encode response to server request", slog.String("method", msg.Method), slog.String("error", err.Error()))
		return
	}
	if err := c.transport.Send(context.Background(), frame); err != nil {
		c.logger.Error("mcp: failed to send response to server request", slog.String("method", msg.Method), slog.String("error", err.Error()))
	}
}
