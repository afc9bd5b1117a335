package mcp

import (
	"context"
	"encoding/json"
	"testing"
)

// stubRequester is a minimal Requester used to test Client's decoding
// logic in isolation from a real Connection.
type stubRequester struct {
	result json.RawMessage
	err    error

	gotMethod string
	gotParams any
}

func (s *stubRequester) Request(_ context.Context, method string, params any, _ ...RequestOption) (json.RawMessage, error) {
	s.gotMethod = method
	s.gotParams = params
	return s.result, s.err
}

func (s *stubRequester) Notify(context.Context, string, any) error { return nil }

func TestClientCallToolDecodesResult(t *testing.T) {
	s := &stubRequester{result: json.RawMessage(`{"content":[{"type":"text","text":"42"}]}`)}
	c := NewClient(s)

	result, err := c.CallTool(context.Background(), "add", map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if s.gotMethod != MethodToolsCall {
		t.Errorf("method = %q, want %q", s.gotMethod, MethodToolsCall)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "42" {
		t.Errorf("Content = %+v", result.Content)
	}
}

func TestClientPropagatesRequestError(t *testing.T) {
	s := &stubRequester{err: NewMethodNotFoundError("tools/call")}
	c := NewClient(s)

	if _, err := c.CallTool(context.Background(), "missing", nil); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestClientListPromptsDecodesCursor(t *testing.T) {
	s := &stubRequester{result: json.RawMessage(`{"prompts":[{"name":"greet"}],"nextCursor":"page2"}`)}
	c := NewClient(s)

	result, err := c.ListPrompts(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if result.NextCursor != "page2" || len(result.Prompts) != 1 {
		t.Errorf("result = %+v", result)
	}
}
