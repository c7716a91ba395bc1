// Package pubsub is an in-process publish/subscribe broker with typed
// payloads. Windows use it for their event streams and the transfer bus
// carries requests and responses over a pair of brokers.
package pubsub

import "time"

// EventType tags what an event means.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"

	// RequestEvent and ResponseEvent tag the two halves of a request/response
	// exchange.
	RequestEvent  EventType = "request"
	ResponseEvent EventType = "response"
)

// Event is a published payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}
