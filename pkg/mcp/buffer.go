package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultMaxFrameBytes is the default cap on retained, unterminated bytes
// a Buffer will hold before reporting an overflow (spec §4.1, §9).
const DefaultMaxFrameBytes = 16 * 1024 * 1024

// Buffer reassembles newline-delimited JSON frames out of an arbitrary
// sequence of byte chunks, independent of how those chunks happen to be
// split by the underlying transport. Blank lines are skipped. A line that
// parses as JSON but not as an object is counted as a parse error rather
// than surfaced as a frame.
type Buffer struct {
	maxFrameBytes int
	pending       []byte

	bytesIn     int64
	framesOut   int64
	parseErrors int64
}

// NewBuffer constructs a Buffer with the given retained-bytes cap. A
// maxFrameBytes of 0 uses DefaultMaxFrameBytes.
func NewBuffer(maxFrameBytes int) *Buffer {
	if maxFrameBytes <= 0 {
		maxFrameBytes = DefaultMaxFrameBytes
	}
	return &Buffer{maxFrameBytes: maxFrameBytes}
}

// Append feeds a chunk of transport bytes into the buffer and returns any
// complete frames it yields. It returns an error only when the retained,
// still-unterminated tail exceeds the configured cap; the caller should
// treat that as a fatal transport condition.
func (b *Buffer) Append(chunk []byte) ([]json.RawMessage, error) {
	b.bytesIn += int64(len(chunk))
	b.pending = append(b.pending, chunk...)

	var frames []json.RawMessage
	for {
		idx := bytes.IndexByte(b.pending, '\n')
		if idx < 0 {
			break
		}
		line := b.pending[:idx]
		b.pending = b.pending[idx+1:]
		if frame, ok := b.parseLine(line); ok {
			frames = append(frames, frame)
		}
	}

	if len(b.pending) > b.maxFrameBytes {
		return frames, fmt.Errorf("mcp: message buffer exceeded %d bytes without a newline", b.maxFrameBytes)
	}
	return frames, nil
}

// parseLine trims a candidate line and, if non-blank, validates it
// decodes as a JSON object. It reports the trimmed line bytes as the
// frame so the codec can decode it again with full fidelity.
func (b *Buffer) parseLine(line []byte) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		b.parseErrors++
		return nil, false
	}
	if _, ok := v.(map[string]any); !ok {
		b.parseErrors++
		return nil, false
	}
	b.framesOut++
	return json.RawMessage(trimmed), true
}

// Reset attempts one final parse of whatever bytes are retained
// (typically the tail after a transport EOF with no trailing newline),
// returning it as a last frame if it happens to be a complete JSON
// object, then clears the retained tail.
func (b *Buffer) Reset() []json.RawMessage {
	var frames []json.RawMessage
	if frame, ok := b.parseLine(b.pending); ok {
		frames = append(frames, frame)
	}
	b.pending = nil
	return frames
}

// BufferStats reports the buffer's lifetime counters.
type BufferStats struct {
	BytesIn     int64
	FramesOut   int64
	ParseErrors int64
}

// Stats returns a snapshot of the buffer's counters.
func (b *Buffer) Stats() BufferStats {
	return BufferStats{
		BytesIn:     b.bytesIn,
		FramesOut:   b.framesOut,
		ParseErrors: b.parseErrors,
	}
}
