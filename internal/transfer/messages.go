// Package transfer moves exclusive ownership of a tab from one window to
// another. Windows never call each other: a source publishes a Request on the
// shared Bus and waits for the matching Response, and ownership moves only when
// an Ack arrives.
package transfer

import (
	"time"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/tabs"
)

// Request asks Target to adopt Tab. The tab still lives in the source window
// while the request is in flight.
type Request struct {
	ID         domain.RequestID
	Source     domain.WindowID
	Target     domain.WindowID
	Tab        tabs.Tab
	ContextDir string
	// Deadline is when the source stops waiting. Targets reject requests that
	// arrive after it, since the source has already rolled back.
	Deadline time.Time
}

// ResponseKind distinguishes acceptance from rejection.
type ResponseKind int

const (
	// KindAck means the responder adopted the tab.
	KindAck ResponseKind = iota
	// KindNack means the responder refused; Reason says why.
	KindNack
)

func (k ResponseKind) String() string {
	switch k {
	case KindAck:
		return "ack"
	case KindNack:
		return "nack"
	default:
		return "unknown"
	}
}

// Response answers exactly one Request, matched by RequestID.
type Response struct {
	RequestID domain.RequestID
	Kind      ResponseKind
	Responder domain.WindowID
	Reason    string
}

// Ack builds an accepting response.
func Ack(id domain.RequestID, responder domain.WindowID) Response {
	return Response{RequestID: id, Kind: KindAck, Responder: responder}
}

// Nack builds a rejecting response.
func Nack(id domain.RequestID, responder domain.WindowID, reason string) Response {
	return Response{RequestID: id, Kind: KindNack, Responder: responder, Reason: reason}
}
