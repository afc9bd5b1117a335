// Package mcp implements a client for the Model Context Protocol (MCP), a
// JSON-RPC 2.0 based protocol for discovering and invoking tools, reading
// resources, and fetching prompt templates exposed by external MCP servers.
//
// # Core Architecture
//
// A Connection drives the per-peer handshake and request/response
// correlation over one of two transports: a local-subprocess transport
// carrying newline-delimited JSON over the child's stdin/stdout, and an
// HTTP transport posting JSON bodies and reading JSON or Server-Sent Event
// responses. A Pool supervises several Connections and picks one per
// checkout using a round-robin, random, or least-busy strategy.
//
// # Transport Layer
//
// The Stdio transport spawns a subprocess (resolving the executable on
// PATH unless an absolute path is given), streams its stdout through a
// Buffer that reassembles newline-delimited JSON frames from arbitrary
// chunk boundaries, and watches for child exit.
//
// The HTTP transport POSTs every outbound message independently so no
// send blocks another, and decodes the response as a single JSON object,
// a JSON array of objects, or an `text/event-stream` body whose `data:`
// lines are joined and decoded. A server-assigned `Mcp-Session-Id` header
// is captured and replayed on every subsequent request.
//
// # Request correlation
//
// The Tracker hands out a strictly increasing integer ID per request,
// arms a per-request timeout, and guarantees that exactly one of
// complete/fail/cancel/timeout ever delivers an outcome to the caller's
// waiter.
//
// # Concurrency
//
// Each Connection owns one goroutine that serially dispatches inbound
// frames — decoding, routing responses to the Tracker, dispatching
// notifications to the configured handler, and auto-answering the small
// set of server-initiated requests the client supports (ping, roots/list,
// and a method-not-found rejection for everything else, including
// sampling/createMessage, which this client declines). Callers of
// Request block on a one-shot channel until their outcome is delivered or
// their context is cancelled.
package mcp
