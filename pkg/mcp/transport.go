package mcp

import (
	"context"
	"encoding/json"
)

// EventKind distinguishes the four shapes of Event a Transport can
// deliver (spec §4.6 Transport Contract).
type EventKind int

// EventKind values.
const (
	EventReady EventKind = iota
	EventMessage
	EventError
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is one item on a Transport's event stream. Frame is set only for
// EventMessage, Err only for EventError, Reason only for EventClosed.
type Event struct {
	Kind   EventKind
	Frame  json.RawMessage
	Err    error
	Reason string
}

// Transport is the contract both the Stdio and HTTP transports implement
// (spec §4.6). Start begins delivering events on the returned channel,
// which the Transport closes after emitting EventClosed. Send enqueues an
// outbound frame; for HTTP each Send runs independently, so a slow
// response never blocks another Send. Close releases the transport's
// resources; it is safe to call more than once and safe to call
// concurrently with Send.
type Transport interface {
	Start(ctx context.Context) (<-chan Event, error)
	Send(ctx context.Context, frame []byte) error
	Close() error
	Connected() bool
}
