package mcp

// Method names for every MCP request and notification this client sends,
// answers, or receives (spec §4.3).
const (
	MethodInitialize     = "initialize"
	MethodInitialized    = "notifications/initialized"
	MethodPing           = "ping"
	MethodToolsList      = "tools/list"
	MethodToolsCall      = "tools/call"
	MethodResourcesList          = "resources/list"
	MethodResourcesTemplatesList = "resources/templates/list"
	MethodResourcesRead         = "resources/read"
	MethodResourcesSubscribe    = "resources/subscribe"
	MethodResourcesUnsubscribe  = "resources/unsubscribe"
	MethodPromptsList    = "prompts/list"
	MethodPromptsGet     = "prompts/get"
	MethodCompletionComplete = "completion/complete"
	MethodLoggingSetLevel    = "logging/setLevel"
	MethodRootsList          = "roots/list"
	MethodSamplingCreateMessage = "sampling/createMessage"
	MethodNotificationsCancelled        = "notifications/cancelled"
	MethodNotificationsProgress         = "notifications/progress"
	MethodNotificationsMessage          = "notifications/message"
	MethodNotificationsRootsListChanged = "notifications/roots/list_changed"
	MethodNotificationsToolsListChanged     = "notifications/tools/list_changed"
	MethodNotificationsPromptsListChanged   = "notifications/prompts/list_changed"
	MethodNotificationsResourcesListChanged = "notifications/resources/list_changed"
	MethodNotificationsResourceUpdated      = "notifications/resources/updated"
)

// Info identifies a peer (client or server) by name and version, exchanged
// during initialize.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// initializeParams is the payload of an initialize request.
type initializeParams struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    ClientCapabilities  `json:"capabilities"`
	ClientInfo      Info                `json:"clientInfo"`
}

// InitializeResult is the payload of a successful initialize response.
type InitializeResult struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    ServerCapabilities  `json:"capabilities"`
	ServerInfo      Info                `json:"serverInfo"`
	Instructions    string              `json:"instructions,omitempty"`
}

// BuildInitialize builds the initialize request's method and params.
func BuildInitialize(protocolVersion string, caps ClientCapabilities, info Info) (string, any) {
	return MethodInitialize, initializeParams{
		ProtocolVersion: protocolVersion,
		Capabilities:    caps,
		ClientInfo:      info,
	}
}

// BuildInitializedNotification builds the post-handshake notification.
func BuildInitializedNotification() (string, any) {
	return MethodInitialized, nil
}

// BuildPing builds a liveness-check request with no params.
func BuildPing() (string, any) {
	return MethodPing, nil
}

type paginatedParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// BuildToolsList builds a tools/list request; cursor may be empty.
func BuildToolsList(cursor string) (string, any) {
	return MethodToolsList, paginatedParams{Cursor: cursor}
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// BuildToolsCall builds a tools/call request.
func BuildToolsCall(name string, args map[string]any) (string, any) {
	return MethodToolsCall, toolsCallParams{Name: name, Arguments: args}
}

// BuildResourcesList builds a resources/list request; cursor may be empty.
func BuildResourcesList(cursor string) (string, any) {
	return MethodResourcesList, paginatedParams{Cursor: cursor}
}

// BuildResourcesTemplatesList builds a resources/templates/list request.
func BuildResourcesTemplatesList(cursor string) (string, any) {
	return MethodResourcesTemplatesList, paginatedParams{Cursor: cursor}
}

type resourceURIParams struct {
	URI string `json:"uri"`
}

// BuildResourcesRead builds a resources/read request for uri.
func BuildResourcesRead(uri string) (string, any) {
	return MethodResourcesRead, resourceURIParams{URI: uri}
}

// BuildResourcesSubscribe builds a resources/subscribe request for uri.
func BuildResourcesSubscribe(uri string) (string, any) {
	return MethodResourcesSubscribe, resourceURIParams{URI: uri}
}

// BuildResourcesUnsubscribe builds a resources/unsubscribe request for uri.
func BuildResourcesUnsubscribe(uri string) (string, any) {
	return MethodResourcesUnsubscribe, resourceURIParams{URI: uri}
}

// BuildPromptsList builds a prompts/list request; cursor may be empty.
func BuildPromptsList(cursor string) (string, any) {
	return MethodPromptsList, paginatedParams{Cursor: cursor}
}

type promptsGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// BuildPromptsGet builds a prompts/get request.
func BuildPromptsGet(name string, args map[string]string) (string, any) {
	return MethodPromptsGet, promptsGetParams{Name: name, Arguments: args}
}

// CompletionReference names what a completion/complete request is
// completing against: either a prompt name or a resource template URI.
type CompletionReference struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
}

// CompletionArgument is the partially-typed argument being completed.
type CompletionArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type completionCompleteParams struct {
	Ref      CompletionReference `json:"ref"`
	Argument CompletionArgument  `json:"argument"`
}

// BuildCompletionComplete builds a completion/complete request.
func BuildCompletionComplete(ref CompletionReference, arg CompletionArgument) (string, any) {
	return MethodCompletionComplete, completionCompleteParams{Ref: ref, Argument: arg}
}

type loggingSetLevelParams struct {
	Level string `json:"level"`
}

// BuildLoggingSetLevel builds a logging/setLevel request.
func BuildLoggingSetLevel(level string) (string, any) {
	return MethodLoggingSetLevel, loggingSetLevelParams{Level: level}
}

type cancelledParams struct {
	RequestID string `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

// BuildCancelledNotification builds a notifications/cancelled notification
// for the request identified by requestID.
func BuildCancelledNotification(requestID, reason string) (string, any) {
	return MethodNotificationsCancelled, cancelledParams{RequestID: requestID, Reason: reason}
}

type progressParams struct {
	ProgressToken string  `json:"progressToken"`
	Progress      float64 `json:"progress"`
	Total         float64 `json:"total,omitempty"`
}

// BuildProgressNotification builds a notifications/progress notification.
func BuildProgressNotification(token string, progress, total float64) (string, any) {
	return MethodNotificationsProgress, progressParams{ProgressToken: token, Progress: progress, Total: total}
}

// BuildRootsListChangedNotification builds a
// notifications/roots/list_changed notification.
func BuildRootsListChangedNotification() (string, any) {
	return MethodNotificationsRootsListChanged, nil
}
