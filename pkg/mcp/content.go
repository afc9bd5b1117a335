package mcp

import "encoding/base64"

// ContentType identifies the shape of one Content block returned by a
// tool call, resource read, or prompt message.
type ContentType string

// ContentType values.
const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeResource ContentType = "resource"
)

// Content is one block of a tool result, resource contents, or prompt
// message. Only the fields relevant to Type are populated.
type Content struct {
	Type     ContentType `json:"type"`
	Text     string      `json:"text,omitempty"`
	Data     string      `json:"data,omitempty"`
	MimeType string      `json:"mimeType,omitempty"`
}

// TextOf returns c's text if it is a text block.
func (c Content) TextOf() (string, bool) {
	if c.Type != ContentTypeText {
		return "", false
	}
	return c.Text, true
}

// DecodeBinary base64-decodes an image or audio block's Data field.
func (c Content) DecodeBinary() ([]byte, error) {
	if c.Type != ContentTypeImage && c.Type != ContentTypeAudio {
		return nil, NewInvalidParamsError("content block is not binary")
	}
	return base64.StdEncoding.DecodeString(c.Data)
}

// JoinText concatenates the text of every text block in blocks, in
// order, with no separator, a convenience for the common case of a tool
// that returns a single logical text answer split across content blocks.
func JoinText(blocks []Content) string {
	var out []byte
	for _, b := range blocks {
		if b.Type == ContentTypeText {
			out = append(out, b.Text...)
		}
	}
	return string(out)
}
