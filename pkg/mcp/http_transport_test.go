package mcp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func drainReady(t *testing.T, events <-chan Event) {
	t.Helper()
	select {
	case ev := <-events:
		if ev.Kind != EventReady {
			t.Fatalf("first event = %v, want ready", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ready event")
	}
}

func TestHTTPTransportJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(sessionIDHeader, "sess-123")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	events, err := transport.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	drainReady(t, events)

	if err := transport.Send(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != EventMessage {
			t.Fatalf("event = %v, want message", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message event")
	}

	if got := transport.SessionID(); got != "sess-123" {
		t.Errorf("SessionID() = %q, want sess-123", got)
	}
}

func TestHTTPTransportJSONArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"jsonrpc":"2.0","id":1,"result":{}},{"jsonrpc":"2.0","id":2,"result":{}}]`)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	events, _ := transport.Start(context.Background())
	drainReady(t, events)
	_ = transport.Send(context.Background(), []byte(`[]`))

	got := 0
	for got < 2 {
		select {
		case ev := <-events:
			if ev.Kind != EventMessage {
				t.Fatalf("event = %v, want message", ev.Kind)
			}
			got++
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d messages, want 2", got)
		}
	}
}

func TestHTTPTransportSSEResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "data: {\"jsonrpc\":\"2.0\",\"id\":1,\"result\":{}}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	events, _ := transport.Start(context.Background())
	drainReady(t, events)
	_ = transport.Send(context.Background(), []byte(`{}`))

	select {
	case ev := <-events:
		if ev.Kind != EventMessage {
			t.Fatalf("event = %v, want message", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SSE message")
	}
}

func TestHTTPTransportAcceptedHasNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	events, _ := transport.Start(context.Background())
	drainReady(t, events)
	_ = transport.Send(context.Background(), []byte(`{}`))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event for a 202 response: %v", ev.Kind)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHTTPTransportErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	events, _ := transport.Start(context.Background())
	drainReady(t, events)
	_ = transport.Send(context.Background(), []byte(`{}`))

	select {
	case ev := <-events:
		if ev.Kind != EventError {
			t.Fatalf("event = %v, want error", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error event")
	}
}

// TestHTTPTransportCloseWaitsForInFlightRequests guards against Close
// racing a concurrent roundTrip: EventClosed must always be the last
// event observed, with no panic from sending on a closed channel.
func TestHTTPTransportCloseWaitsForInFlightRequests(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	events, _ := transport.Start(context.Background())
	drainReady(t, events)

	if err := transport.Send(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := transport.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	// Give Close a chance to race the still-pending roundTrip before the
	// handler is allowed to respond.
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-done

	var sawClosed bool
	for ev := range events {
		if sawClosed {
			t.Fatalf("event %v observed after EventClosed", ev.Kind)
		}
		if ev.Kind == EventClosed {
			sawClosed = true
		}
	}
	if !sawClosed {
		t.Fatal("EventClosed was never observed")
	}
}
