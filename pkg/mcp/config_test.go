package mcp

import (
	"context"
	"testing"
)

func TestConfigBuildTransportRejectsUnknownKind(t *testing.T) {
	cfg := Config{Transport: TransportKind("carrier-pigeon")}
	if _, err := cfg.buildTransport(); err == nil {
		t.Fatal("expected error for unknown transport kind")
	}
}

func TestConfigBuildTransportRequiresCommandOrURL(t *testing.T) {
	if _, err := (Config{Transport: TransportStdio}).buildTransport(); err == nil {
		t.Error("expected error when stdio config has no command")
	}
	if _, err := (Config{Transport: TransportHTTP}).buildTransport(); err == nil {
		t.Error("expected error when http config has no url")
	}
}

func TestDialPoolRejectsUnknownTransport(t *testing.T) {
	_, err := DialPool(context.Background(), Config{Transport: TransportKind("nope"), Connections: 3})
	if err == nil {
		t.Fatal("expected error")
	}
}
