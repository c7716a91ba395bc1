package transfer

import (
	"context"

	"github.com/zjrosen/tabdock/internal/pubsub"
)

// Bus is the process-wide broadcast channel pair shared by all windows.
// Every window sees every request; only the addressed target answers.
// Delivery is best-effort: a subscriber whose buffer is full misses events.
type Bus struct {
	requests  *pubsub.Broker[Request]
	responses *pubsub.Broker[Response]

	// delivered runs after a request is handed to subscribers, before
	// PublishRequest returns. Nil outside tests.
	delivered func(Request)
}

// NewBus creates a bus whose subscribers buffer up to bufferSize events.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		return &Bus{
			requests:  pubsub.NewBroker[Request](),
			responses: pubsub.NewBroker[Response](),
		}
	}
	return &Bus{
		requests:  pubsub.NewBrokerWithBuffer[Request](bufferSize),
		responses: pubsub.NewBrokerWithBuffer[Response](bufferSize),
	}
}

// SubscribeRequests returns a channel of requests, closed when ctx ends.
func (b *Bus) SubscribeRequests(ctx context.Context) <-chan pubsub.Event[Request] {
	return b.requests.Subscribe(ctx)
}

// SubscribeResponses returns a channel of responses, closed when ctx ends.
func (b *Bus) SubscribeResponses(ctx context.Context) <-chan pubsub.Event[Response] {
	return b.responses.Subscribe(ctx)
}

// PublishRequest broadcasts req. It fails when the bus is closed or no window
// is listening.
func (b *Bus) PublishRequest(req Request) error {
	if err := b.requests.TryPublish(pubsub.RequestEvent, req); err != nil {
		return err
	}
	if b.delivered != nil {
		b.delivered(req)
	}
	return nil
}

// PublishResponse broadcasts resp.
func (b *Bus) PublishResponse(resp Response) error {
	return b.responses.TryPublish(pubsub.ResponseEvent, resp)
}

// Close shuts both channels down; later publishes fail with pubsub.ErrClosed.
func (b *Bus) Close() {
	b.requests.Close()
	b.responses.Close()
}
