package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync"

	"github.com/tmaxmax/go-sse"
)

// sessionIDHeader is the header MCP servers use to hand out and expect a
// sticky per-connection session identifier over HTTP.
const sessionIDHeader = "Mcp-Session-Id"

// HTTPOption configures an HTTPTransport at construction time.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient overrides the *http.Client used for every request.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = client }
}

// WithHTTPHeader adds a static header sent with every request (for
// example Authorization).
func WithHTTPHeader(key, value string) HTTPOption {
	return func(t *HTTPTransport) {
		if t.headers == nil {
			t.headers = make(http.Header)
		}
		t.headers.Add(key, value)
	}
}

// WithHTTPLogger overrides the logger used for background send failures.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(t *HTTPTransport) { t.logger = l }
}

// HTTPTransport exchanges JSON-RPC frames with a remote MCP server over
// HTTP POST, decoding either a JSON body or a text/event-stream body
// (spec §4.6.2). Each Send runs its POST on its own goroutine so a slow
// response never blocks another Send. A session id the server returns is
// captured and replayed on every later request.
type HTTPTransport struct {
	url     string
	headers http.Header
	client  *http.Client
	logger  *slog.Logger

	events chan Event

	mu        sync.RWMutex
	sessionID string
	connected bool
	wg        sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}
}

// NewHTTPTransport constructs an HTTPTransport posting to url.
func NewHTTPTransport(url string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		url:    url,
		client: http.DefaultClient,
		logger: slog.Default(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start reports readiness immediately; HTTP has no persistent connection
// to establish up front (Decided Open Question #2: no preflight probe).
func (t *HTTPTransport) Start(_ context.Context) (<-chan Event, error) {
	t.events = make(chan Event, 16)
	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()
	t.events <- Event{Kind: EventReady}
	return t.events, nil
}

// Send POSTs frame to the server on its own goroutine and reports the
// response, or any transport failure, as later events. It returns
// promptly once the request has been queued; the wire round trip and any
// resulting Message/Error events happen asynchronously.
func (t *HTTPTransport) Send(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return NewConnectionClosedError("http transport closed")
	}
	t.wg.Add(1)
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(frame))
	if err != nil {
		t.wg.Done()
		return fmt.Errorf("mcp: build http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	for k, vs := range t.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if sid := t.SessionID(); sid != "" {
		req.Header.Set(sessionIDHeader, sid)
	}

	go func() {
		defer t.wg.Done()
		t.roundTrip(req)
	}()
	return nil
}

func (t *HTTPTransport) roundTrip(req *http.Request) {
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("mcp: http request failed", slog.String("error", err.Error()))
		t.emit(Event{Kind: EventError, Err: fmt.Errorf("mcp: http request: %w", err)})
		return
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get(sessionIDHeader); sid != "" {
		t.mu.Lock()
		t.sessionID = sid
		t.mu.Unlock()
	}

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		t.emit(Event{Kind: EventError, Err: fmt.Errorf("mcp: http status %d: %s", resp.StatusCode, string(body))})
		return
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if contentType == "text/event-stream" {
		t.readSSE(resp.Body)
		return
	}
	t.readJSON(resp.Body)
}

func (t *HTTPTransport) readJSON(body io.Reader) {
	raw, err := io.ReadAll(body)
	if err != nil {
		t.emit(Event{Kind: EventError, Err: fmt.Errorf("mcp: read http body: %w", err)})
		return
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.emit(Event{Kind: EventError, Err: fmt.Errorf("mcp: decode http body: %w", err)})
		return
	}

	switch generic.(type) {
	case []any:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			t.emit(Event{Kind: EventError, Err: fmt.Errorf("mcp: decode http batch: %w", err)})
			return
		}
		for _, item := range items {
			t.emit(Event{Kind: EventMessage, Frame: item})
		}
	case map[string]any:
		t.emit(Event{Kind: EventMessage, Frame: json.RawMessage(raw)})
	default:
		t.emit(Event{Kind: EventError, Err: fmt.Errorf("mcp: http body is neither a JSON object nor array")})
	}
}

func (t *HTTPTransport) readSSE(body io.Reader) {
	for ev, err := range sse.Read(body, nil) {
		if err != nil {
			if err != io.EOF {
				t.emit(Event{Kind: EventError, Err: fmt.Errorf("mcp: read sse stream: %w", err)})
			}
			return
		}
		if ev.Data == "" {
			continue
		}
		t.emit(Event{Kind: EventMessage, Frame: json.RawMessage(ev.Data)})
	}
}

func (t *HTTPTransport) emit(ev Event) {
	select {
	case t.events <- ev:
	case <-t.closed:
	}
}

// SessionID reports the server-assigned session id captured so far, or
// the empty string before the server has assigned one.
func (t *HTTPTransport) SessionID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionID
}

// Close marks the transport closed and emits a final EventClosed. It is
// safe to call more than once. It waits for every in-flight roundTrip to
// finish before closing the events channel, so EventClosed is always the
// last event and no message can be delivered after it.
func (t *HTTPTransport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		close(t.closed)
		t.wg.Wait()
		t.events <- Event{Kind: EventClosed, Reason: "closed by caller"}
		close(t.events)
	})
	return nil
}

// Connected reports whether Close has not yet been called.
func (t *HTTPTransport) Connected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}
