// Package bus provides change-feed transports: an in-process fan-out for
// tests and single-binary runs, and a Redis pub/sub transport that also
// carries writes made by other processes.
package bus

import (
	"context"
	"sync"

	"github.com/rallydesk/rallydesk/internal/ports"
)

// subscriberBuffer bounds each subscriber channel; a subscriber that falls
// this far behind loses events, and the periodic sweep heals the gap.
const subscriberBuffer = 64

// InProcessBus fans change events out to in-process subscribers
type InProcessBus struct {
	mu          sync.Mutex
	subscribers []chan ports.ChangeEvent
	closed      bool
}

// NewInProcessBus creates a new in-process change bus
func NewInProcessBus() *InProcessBus {
	return &InProcessBus{}
}

// Publish delivers the event to every subscriber without blocking
func (b *InProcessBus) Publish(ctx context.Context, event ports.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber. The channel closes when the bus
// closes or the context is cancelled.
func (b *InProcessBus) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, error) {
	ch := make(chan ports.ChangeEvent, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, nil
	}
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(ch)
	}()

	return ch, nil
}

// Close closes the bus and every subscriber channel
func (b *InProcessBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}

func (b *InProcessBus) remove(ch chan ports.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}
