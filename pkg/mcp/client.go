package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Requester is the subset of Connection's surface the ergonomic wrapper
// methods below need. It exists so Client can sit on top of either a bare
// Connection or, via Pool.Transaction, a pooled one.
type Requester interface {
	Request(ctx context.Context, method string, params any, opts ...RequestOption) (json.RawMessage, error)
	Notify(ctx context.Context, method string, params any) error
}

// Client wraps a Requester with one-line, typed methods per MCP
// operation, decoding each result into its Go shape. It carries none of
// the protocol engine's correctness burden; it exists purely for caller
// convenience (spec's "ergonomic per-method wrapper functions" external
// collaborator).
type Client struct {
	r Requester
}

// NewClient wraps r.
func NewClient(r Requester) *Client {
	return &Client{r: r}
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	raw, err := c.r.Request(ctx, method, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mcp: decode %s result: %w", method, err)
	}
	return nil
}

// Tool describes one tool a server exposes to tools/call.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ListToolsResult is the decoded result of tools/list.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// ListTools calls tools/list.
func (c *Client) ListTools(ctx context.Context, cursor string) (ListToolsResult, error) {
	method, params := BuildToolsList(cursor)
	var out ListToolsResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// CallToolResult is the decoded result of tools/call.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// CallTool calls tools/call with name and args.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (CallToolResult, error) {
	method, params := BuildToolsCall(name, args)
	var out CallToolResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// Resource describes one resource a server exposes to resources/read.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourcesResult is the decoded result of resources/list.
type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ListResources calls resources/list.
func (c *Client) ListResources(ctx context.Context, cursor string) (ListResourcesResult, error) {
	method, params := BuildResourcesList(cursor)
	var out ListResourcesResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// ResourceTemplate describes a URI-templated resource family.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourceTemplatesResult is the decoded result of
// resources/templates/list.
type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        string             `json:"nextCursor,omitempty"`
}

// ListResourceTemplates calls resources/templates/list.
func (c *Client) ListResourceTemplates(ctx context.Context, cursor string) (ListResourceTemplatesResult, error) {
	method, params := BuildResourcesTemplatesList(cursor)
	var out ListResourceTemplatesResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// ReadResourceResult is the decoded result of resources/read.
type ReadResourceResult struct {
	Contents []Content `json:"contents"`
}

// ReadResource calls resources/read for uri.
func (c *Client) ReadResource(ctx context.Context, uri string) (ReadResourceResult, error) {
	method, params := BuildResourcesRead(uri)
	var out ReadResourceResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// SubscribeResource calls resources/subscribe for uri.
func (c *Client) SubscribeResource(ctx context.Context, uri string) error {
	method, params := BuildResourcesSubscribe(uri)
	return c.call(ctx, method, params, nil)
}

// UnsubscribeResource calls resources/unsubscribe for uri.
func (c *Client) UnsubscribeResource(ctx context.Context, uri string) error {
	method, params := BuildResourcesUnsubscribe(uri)
	return c.call(ctx, method, params, nil)
}

// PromptArgument describes one named argument a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt describes one prompt template a server exposes to prompts/get.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// ListPromptsResult is the decoded result of prompts/list.
type ListPromptsResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// ListPrompts calls prompts/list.
func (c *Client) ListPrompts(ctx context.Context, cursor string) (ListPromptsResult, error) {
	method, params := BuildPromptsList(cursor)
	var out ListPromptsResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// PromptMessage is one turn of a rendered prompt.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// GetPromptResult is the decoded result of prompts/get.
type GetPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// GetPrompt calls prompts/get with name and args.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (GetPromptResult, error) {
	method, params := BuildPromptsGet(name, args)
	var out GetPromptResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// CompletionResult is the decoded result of completion/complete.
type CompletionResult struct {
	Completion struct {
		Values  []string `json:"values"`
		Total   int      `json:"total,omitempty"`
		HasMore bool     `json:"hasMore,omitempty"`
	} `json:"completion"`
}

// CompletePromptArgument calls completion/complete against a prompt.
func (c *Client) CompletePromptArgument(ctx context.Context, promptName string, arg CompletionArgument) (CompletionResult, error) {
	method, params := BuildCompletionComplete(CompletionReference{Type: "ref/prompt", Name: promptName}, arg)
	var out CompletionResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// CompleteResourceTemplateArgument calls completion/complete against a
// resource template.
func (c *Client) CompleteResourceTemplateArgument(ctx context.Context, uriTemplate string, arg CompletionArgument) (CompletionResult, error) {
	method, params := BuildCompletionComplete(CompletionReference{Type: "ref/resource", URI: uriTemplate}, arg)
	var out CompletionResult
	err := c.call(ctx, method, params, &out)
	return out, err
}

// SetLogLevel calls logging/setLevel.
func (c *Client) SetLogLevel(ctx context.Context, level string) error {
	method, params := BuildLoggingSetLevel(level)
	return c.call(ctx, method, params, nil)
}
