package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the per-subscriber buffer of NewBroker.
const DefaultBufferSize = 64

var (
	// ErrClosed is returned by TryPublish after Close.
	ErrClosed = errors.New("broker closed")
	// ErrNoSubscribers is returned by TryPublish when nobody is listening.
	ErrNoSubscribers = errors.New("no active subscribers")
)

// Broker fans events out to every live subscription. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]struct{}
	done       chan struct{}
	bufferSize int
	dropped    atomic.Uint64
}

// NewBroker creates a broker with DefaultBufferSize.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](DefaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscriptions buffer size
// events. Sizes below 1 fall back to DefaultBufferSize.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	if size < 1 {
		size = DefaultBufferSize
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// Subscribe returns a channel of events published from now on. The channel
// closes when ctx ends or the broker closes; subscribing to a closed broker
// yields an already closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return // Close already closed sub.
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub)
		}
	}()

	return sub
}

// Publish sends an event to all subscribers. It is a no-op after Close.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	_ = b.TryPublish(eventType, payload)
}

// TryPublish is Publish for callers that must know whether the event could
// reach anyone. It fails with ErrClosed after Close and with ErrNoSubscribers
// when there is no live subscription. Delivery to each subscriber is still
// best effort.
func (b *Broker[T]) TryPublish(eventType EventType, payload T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.isClosed() {
		return ErrClosed
	}
	if len(b.subs) == 0 {
		return ErrNoSubscribers
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Close closes every subscription. Later calls do nothing.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed() {
		return
	}
	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// isClosed must be called with mu held.
func (b *Broker[T]) isClosed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber's
// buffer was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}
