package mcp

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only protocol version this codec emits or accepts.
const JSONRPCVersion = "2.0"

// Kind classifies a decoded Message by the JSON-RPC shape it takes on the
// wire, following the presence of its id/method/result/error keys.
type Kind int

// Kind values. Classify checks request, notification, error-response and
// success-response in that order, and falls back to KindInvalid.
const (
	KindInvalid Kind = iota
	KindRequest
	KindNotification
	KindSuccessResponse
	KindErrorResponse
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindSuccessResponse:
		return "success-response"
	case KindErrorResponse:
		return "error-response"
	default:
		return "invalid"
	}
}

// Message is the wire shape of every JSON-RPC 2.0 message this codec
// handles. Id, Params, and Result stay as raw bytes so the codec never
// has to know the schema of a particular method's payload; only their
// presence (a non-nil, non-empty slice) matters for Classify.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

func hasID(m *Message) bool {
	return len(m.ID) > 0 && string(m.ID) != "null"
}

// Classify determines the shape of a decoded Message. It returns
// KindInvalid for a message that matches none of the recognized shapes;
// malformed bytes never reach it, since Decode reports those as an error
// before classifying.
func Classify(m *Message) Kind {
	switch {
	case m.Method != "" && hasID(m):
		return KindRequest
	case m.Method != "" && !hasID(m):
		return KindNotification
	case m.Error != nil && hasID(m):
		return KindErrorResponse
	case m.Result != nil && hasID(m):
		return KindSuccessResponse
	default:
		return KindInvalid
	}
}

// Decode parses a single JSON-RPC frame and classifies it. A malformed
// JSON payload is reported as a parse failure (wrapping the underlying
// json error); a syntactically valid JSON object that does not match any
// recognized JSON-RPC shape decodes successfully with Kind KindInvalid
// rather than erroring, since some callers want to log and skip such
// frames instead of failing the connection.
func Decode(frame []byte) (*Message, Kind, error) {
	var m Message
	if err := json.Unmarshal(frame, &m); err != nil {
		return nil, KindInvalid, fmt.Errorf("mcp: decode frame: %w", err)
	}
	return &m, Classify(&m), nil
}

// EncodeRequest builds a JSON-RPC request frame with a numeric id, as
// required by the Request Tracker (spec §4.7 IDs are monotonic integers).
func EncodeRequest(id uint64, method string, params any) ([]byte, error) {
	idBytes, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode request id: %w", err)
	}
	paramsBytes, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode request params: %w", err)
	}
	return json.Marshal(Message{
		JSONRPC: JSONRPCVersion,
		ID:      idBytes,
		Method:  method,
		Params:  paramsBytes,
	})
}

// EncodeNotification builds a JSON-RPC notification frame (no id).
func EncodeNotification(method string, params any) ([]byte, error) {
	paramsBytes, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode notification params: %w", err)
	}
	return json.Marshal(Message{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  paramsBytes,
	})
}

// EncodeSuccess builds a JSON-RPC success response echoing id.
func EncodeSuccess(id json.RawMessage, result any) ([]byte, error) {
	resultBytes, err := marshalParams(result)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode result: %w", err)
	}
	if resultBytes == nil {
		resultBytes = json.RawMessage("{}")
	}
	return json.Marshal(Message{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  resultBytes,
	})
}

// EncodeError builds a JSON-RPC error response echoing id.
func EncodeError(id json.RawMessage, rpcErr *Error) ([]byte, error) {
	return json.Marshal(Message{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   rpcErr,
	})
}

func marshalParams(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 || string(raw) == "{}" {
			return nil, nil
		}
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "{}" {
		return nil, nil
	}
	return json.RawMessage(b), nil
}

// IDKey renders a JSON-RPC id (numeric or string, per spec §4.2's decode
// leniency) as a comparable string key, for use by the Request Tracker's
// correlation table.
func IDKey(id json.RawMessage) (string, bool) {
	if len(id) == 0 {
		return "", false
	}
	var v any
	if err := json.Unmarshal(id, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case float64:
		return fmt.Sprintf("%d", int64(t)), true
	case string:
		return t, true
	default:
		return "", false
	}
}
