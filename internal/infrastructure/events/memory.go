package events

import (
	"context"
	"sync"

	"social-campaign-backend/internal/application/ports"
)

// MemoryBus records published events.
type MemoryBus struct {
	mu     sync.Mutex
	events []ports.Event
	err    error
}

var _ ports.EventBus = (*MemoryBus)(nil)

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(ctx context.Context, events ...ports.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, events...)
	return nil
}

// Events returns a copy of everything published so far.
func (b *MemoryBus) Events() []ports.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ports.Event(nil), b.events...)
}

// Fail makes subsequent publishes return err; nil restores normal operation.
func (b *MemoryBus) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// DiscardBus drops every event. It stands in for the bus when publishing is
// disabled.
type DiscardBus struct{}

var _ ports.EventBus = DiscardBus{}

func (DiscardBus) Publish(ctx context.Context, events ...ports.Event) error { return nil }
