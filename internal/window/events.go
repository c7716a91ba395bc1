package window

import (
	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/transfer"
)

// EventKind says what changed in a window.
type EventKind int

const (
	// EventTabsChanged means the tab list or active tab changed.
	EventTabsChanged EventKind = iota
	// EventDragChanged means drag feedback (marker, settle flag) changed.
	EventDragChanged
	// EventTransferFinished carries the result of a transfer this window started.
	EventTransferFinished
	// EventClosed is the last event a window publishes.
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventTabsChanged:
		return "tabs_changed"
	case EventDragChanged:
		return "drag_changed"
	case EventTransferFinished:
		return "transfer_finished"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is published on a window's event broker.
type Event struct {
	Window domain.WindowID
	Kind   EventKind
	// Result is set for EventTransferFinished.
	Result *transfer.Result
}
