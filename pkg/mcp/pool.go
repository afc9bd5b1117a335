package mcp

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Strategy selects which member Connection a Pool checkout hands out
// (spec §4.9).
type Strategy int

// Strategy values.
const (
	StrategyRoundRobin Strategy = iota
	StrategyRandom
	StrategyLeastBusy
)

// member pairs a Connection with the uuid the Pool tagged it with, which
// RemoveConnection uses to find it; the Connection itself has no notion
// of an identity, so the uuid lives here rather than on Connection.
type member struct {
	id   string
	conn *Connection
}

// Pool round-robins, randomizes, or load-balances checkouts across a set
// of Connections (spec §4.9). It never dials on the caller's behalf: every
// member must already be started (or be started by the caller after
// AddConnection) before it can be checked out.
type Pool struct {
	strategy Strategy

	mu      sync.RWMutex
	members []*member

	next atomic.Uint64
}

// PoolOption configures a Pool at construction time.
type PoolOption func(*Pool)

// WithStrategy overrides the default round-robin selection strategy.
func WithStrategy(s Strategy) PoolOption {
	return func(p *Pool) { p.strategy = s }
}

// NewPool constructs a Pool over the given Connections.
func NewPool(conns []*Connection, opts ...PoolOption) *Pool {
	p := &Pool{strategy: StrategyRoundRobin}
	for _, c := range conns {
		p.members = append(p.members, &member{id: uuid.NewString(), conn: c})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddConnection adds conn to the pool and returns the uuid the pool
// tagged it with.
func (p *Pool) AddConnection(conn *Connection) string {
	id := uuid.NewString()
	p.mu.Lock()
	p.members = append(p.members, &member{id: id, conn: conn})
	p.mu.Unlock()
	return id
}

// RemoveConnection removes the member identified by id, if present. It
// does not disconnect the Connection; the caller owns its lifecycle.
func (p *Pool) RemoveConnection(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, m := range p.members {
		if m.id == id {
			p.members = append(p.members[:i], p.members[i+1:]...)
			return true
		}
	}
	return false
}

// ErrNoConnections is returned by Checkout when the pool has no ready
// members, distinguishable from a per-request failure.
var ErrNoConnections = fmt.Errorf("mcp: pool has no ready connections")

// Checkout selects one ready Connection according to the pool's
// strategy. Members whose Status is not StatusReady are skipped.
func (p *Pool) Checkout() (*Connection, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ready := make([]*member, 0, len(p.members))
	for _, m := range p.members {
		if m.conn.Status() == StatusReady {
			ready = append(ready, m)
		}
	}
	if len(ready) == 0 {
		return nil, ErrNoConnections
	}

	switch p.strategy {
	case StrategyRandom:
		return ready[rand.IntN(len(ready))].conn, nil
	case StrategyLeastBusy:
		best := ready[0]
		for _, m := range ready[1:] {
			if m.conn.PendingCount() < best.conn.PendingCount() {
				best = m
			}
		}
		return best.conn, nil
	default:
		idx := p.next.Add(1) - 1
		return ready[idx%uint64(len(ready))].conn, nil
	}
}

// Checkin is a no-op: Connections are not exclusively owned while
// checked out, so there is nothing to release. It exists so callers can
// symmetrically bracket a Checkout the way the source's checkout/checkin
// pair does.
func (p *Pool) Checkin(*Connection) {}

// Transaction checks out a Connection and runs fn with it, a convenience
// wrapper for the common checkout/use/checkin sequence.
func (p *Pool) Transaction(ctx context.Context, fn func(ctx context.Context, conn *Connection) error) error {
	conn, err := p.Checkout()
	if err != nil {
		return err
	}
	defer p.Checkin(conn)
	return fn(ctx, conn)
}

// Len reports the number of members currently in the pool, ready or not.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}
