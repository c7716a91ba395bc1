package tracing

// Span attribute keys.
const (
	AttrRequestID    = "transfer.request_id"
	AttrSourceWindow = "transfer.source_window"
	AttrTargetWindow = "transfer.target_window"
	AttrTabID        = "transfer.tab_id"
	AttrTabIndex     = "transfer.tab_index"
	AttrOutcome      = "transfer.outcome"
	AttrReason       = "transfer.reason"
	AttrFlow         = "transfer.flow"
)

// Span names.
const (
	SpanMoveToWindow    = "transfer.move_to_window"
	SpanMoveToNewWindow = "transfer.move_to_new_window"
	SpanHandleRequest   = "transfer.handle_request"
)

// Span event names.
const (
	EventRequestPublished = "request.published"
	EventResponseIgnored  = "response.ignored"
	EventResponseMatched  = "response.matched"
	EventWindowCreated    = "window.created"
	EventCommitted        = "tab.committed"
	EventDuplicateRequest = "request.duplicate"
)
