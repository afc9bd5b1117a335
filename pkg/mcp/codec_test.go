package mcp

import (
	"encoding/json"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want Kind
	}{
		{"request", Message{Method: "tools/call", ID: json.RawMessage("1")}, KindRequest},
		{"notification", Message{Method: "notifications/initialized"}, KindNotification},
		{"success", Message{ID: json.RawMessage("2"), Result: json.RawMessage("{}")}, KindSuccessResponse},
		{"error", Message{ID: json.RawMessage("3"), Error: &Error{Code: CodeMethodNotFound}}, KindErrorResponse},
		{"invalid", Message{}, KindInvalid},
		{"null id treated as notification", Message{Method: "ping", ID: json.RawMessage("null")}, KindNotification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(&tt.msg); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, _, err := Decode([]byte("{not json"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEncodeRequestUsesNumericID(t *testing.T) {
	frame, err := EncodeRequest(7, "tools/list", nil)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	msg, kind, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if kind != KindRequest {
		t.Fatalf("kind = %v, want request", kind)
	}
	if string(msg.ID) != "7" {
		t.Errorf("id = %s, want 7 (numeric, not quoted)", msg.ID)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame, err := EncodeRequest(1, "tools/call", map[string]any{"name": "echo"})
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	msg, kind, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if kind != KindRequest || msg.Method != "tools/call" {
		t.Fatalf("got kind=%v method=%q", kind, msg.Method)
	}

	resp, err := EncodeSuccess(msg.ID, map[string]string{"ok": "yes"})
	if err != nil {
		t.Fatalf("EncodeSuccess: %v", err)
	}
	rmsg, rkind, err := Decode(resp)
	if err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if rkind != KindSuccessResponse {
		t.Fatalf("kind = %v, want success-response", rkind)
	}
	key, ok := IDKey(rmsg.ID)
	if !ok || key != "1" {
		t.Errorf("IDKey() = %q, %v, want \"1\", true", key, ok)
	}
}

func TestIDKeyAcceptsStringIDs(t *testing.T) {
	key, ok := IDKey(json.RawMessage(`"abc"`))
	if !ok || key != "abc" {
		t.Errorf("IDKey() = %q, %v, want \"abc\", true", key, ok)
	}
}

func TestEncodeRequestOmitsEmptyParams(t *testing.T) {
	tests := []struct {
		name   string
		params any
	}{
		{"nil", nil},
		{"empty struct", paginatedParams{}},
		{"empty map", map[string]any{}},
		{"empty raw object", json.RawMessage(`{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeRequest(1, "tools/list", tt.params)
			if err != nil {
				t.Fatalf("EncodeRequest: %v", err)
			}
			msg, _, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if msg.Params != nil {
				t.Errorf("Params = %s, want omitted", msg.Params)
			}
		})
	}
}

func TestEncodeNotificationHasNoID(t *testing.T) {
	frame, err := EncodeNotification("notifications/initialized", nil)
	if err != nil {
		t.Fatalf("EncodeNotification: %v", err)
	}
	_, kind, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if kind != KindNotification {
		t.Fatalf("kind = %v, want notification", kind)
	}
}
