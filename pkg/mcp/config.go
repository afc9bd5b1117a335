package mcp

import (
	"context"
	"fmt"
	"time"
)

// TransportKind selects which Transport implementation Config builds.
type TransportKind string

// TransportKind values.
const (
	TransportStdio TransportKind = "stdio"
	TransportHTTP  TransportKind = "http"
)

// Config assembles a Connection (or a Pool of them) from data, the way a
// caller might decode it from JSON rather than wiring options by hand
// (spec §6's external-interface table). Every field maps to one row of
// that table.
type Config struct {
	Transport TransportKind `json:"transport"`

	// Stdio transport fields.
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Env     []string `json:"env,omitempty"`
	Dir     string   `json:"cwd,omitempty"`

	// HTTP transport fields.
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	ClientInfo   Info                `json:"clientInfo"`
	Capabilities *ClientCapabilities `json:"capabilities,omitempty"`

	Timeout           time.Duration `json:"timeout,omitempty"`
	InitializeTimeout time.Duration `json:"initializeTimeout,omitempty"`
	MaxFrameBytes     int           `json:"maxFrameBytes,omitempty"`

	// Pool fields; Connections is the number of identical Connections
	// DialPool builds over the same transport target. Dial ignores it and
	// always builds one Connection; DialPool turns zero or one into a
	// one-member Pool.
	Connections int      `json:"connections,omitempty"`
	Strategy    Strategy `json:"strategy,omitempty"`
}

func (cfg Config) buildTransport() (Transport, error) {
	switch cfg.Transport {
	case TransportStdio:
		if cfg.Command == "" {
			return nil, fmt.Errorf("mcp: config: stdio transport requires command")
		}
		opts := []StdioOption{}
		if len(cfg.Env) > 0 {
			opts = append(opts, WithStdioEnv(cfg.Env...))
		}
		if cfg.Dir != "" {
			opts = append(opts, WithStdioDir(cfg.Dir))
		}
		if cfg.MaxFrameBytes > 0 {
			opts = append(opts, WithStdioMaxFrameBytes(cfg.MaxFrameBytes))
		}
		return NewStdioTransport(cfg.Command, cfg.Args, opts...), nil
	case TransportHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("mcp: config: http transport requires url")
		}
		opts := []HTTPOption{}
		for k, v := range cfg.Headers {
			opts = append(opts, WithHTTPHeader(k, v))
		}
		return NewHTTPTransport(cfg.URL, opts...), nil
	default:
		return nil, fmt.Errorf("mcp: config: unknown transport %q", cfg.Transport)
	}
}

func (cfg Config) connectionOptions() []ConnectionOption {
	opts := []ConnectionOption{WithClientInfo(cfg.ClientInfo)}
	if cfg.Capabilities != nil {
		opts = append(opts, WithClientCapabilities(*cfg.Capabilities))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithDefaultTimeout(cfg.Timeout))
	}
	if cfg.InitializeTimeout > 0 {
		opts = append(opts, WithInitializeTimeout(cfg.InitializeTimeout))
	}
	if cfg.MaxFrameBytes > 0 {
		opts = append(opts, WithMaxFrameBytes(cfg.MaxFrameBytes))
	}
	return opts
}

// Dial builds and starts a single Connection from cfg.
func Dial(ctx context.Context, cfg Config) (*Connection, error) {
	transport, err := cfg.buildTransport()
	if err != nil {
		return nil, err
	}
	conn := NewConnection(transport, cfg.connectionOptions()...)
	if err := conn.Start(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// DialPool builds and starts cfg.Connections Connections, each over its
// own transport instance pointed at the same target, and assembles them
// into a Pool using cfg.Strategy. A Connections value below 2 still
// produces a valid one-member Pool.
func DialPool(ctx context.Context, cfg Config) (*Pool, error) {
	n := cfg.Connections
	if n < 1 {
		n = 1
	}
	conns := make([]*Connection, 0, n)
	for i := 0; i < n; i++ {
		conn, err := Dial(ctx, cfg)
		if err != nil {
			for _, c := range conns {
				_ = c.Disconnect()
			}
			return nil, fmt.Errorf("mcp: dial pool member %d: %w", i, err)
		}
		conns = append(conns, conn)
	}
	return NewPool(conns, WithStrategy(cfg.Strategy)), nil
}
