package mcp

import "testing"

func TestErrorRetriable(t *testing.T) {
	tests := []struct {
		err  *Error
		want bool
	}{
		{NewRequestTimeoutError("tools/call"), true},
		{NewConnectionClosedError(""), true},
		{NewMethodNotFoundError("foo"), false},
		{NewInvalidParamsError("bad"), false},
		{NewRequestCancelledError("tools/call"), false},
	}
	for _, tt := range tests {
		if got := tt.err.Retriable(); got != tt.want {
			t.Errorf("%v.Retriable() = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrorImplementsErrorInterface(t *testing.T) {
	var err error = NewInternalError("boom")
	if err.Error() == "" {
		t.Fatal("Error() returned empty string")
	}
}
