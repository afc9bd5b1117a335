package mcp

import (
	"encoding/base64"
	"testing"
)

func TestContentTextOf(t *testing.T) {
	c := Content{Type: ContentTypeText, Text: "hello"}
	text, ok := c.TextOf()
	if !ok || text != "hello" {
		t.Errorf("TextOf() = %q, %v, want hello, true", text, ok)
	}

	img := Content{Type: ContentTypeImage}
	if _, ok := img.TextOf(); ok {
		t.Error("TextOf() on an image block returned ok=true")
	}
}

func TestContentDecodeBinary(t *testing.T) {
	raw := []byte("binary data")
	c := Content{Type: ContentTypeImage, Data: base64.StdEncoding.EncodeToString(raw)}
	got, err := c.DecodeBinary()
	if err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("DecodeBinary() = %q, want %q", got, raw)
	}

	text := Content{Type: ContentTypeText}
	if _, err := text.DecodeBinary(); err == nil {
		t.Error("expected error decoding a text block as binary")
	}
}

func TestJoinText(t *testing.T) {
	blocks := []Content{
		{Type: ContentTypeText, Text: "hello "},
		{Type: ContentTypeImage, Data: "ignored"},
		{Type: ContentTypeText, Text: "world"},
	}
	if got := JoinText(blocks); got != "hello world" {
		t.Errorf("JoinText() = %q, want %q", got, "hello world")
	}
}
