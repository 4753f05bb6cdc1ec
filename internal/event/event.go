// Package event carries domain events out of the order core. Delivery is
// fire-and-forget: a failed notification never rolls back the state change
// that produced it.
package event

import (
	"context"
	"time"
)

// Event names emitted by the order core.
const (
	OrderCreated   = "order:created"
	OrderCheckin   = "order:checkin"
	OrderCancelled = "order:cancelled"
)

// Event is a domain event with its payload and emission time.
type Event struct {
	Name      string    `json:"name"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives domain events. Implementations must not block the
// calling request beyond a quick handoff and must swallow their own errors.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Multi fans an event out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		n.Notify(ctx, e)
	}
}

// Noop discards all events.
type Noop struct{}

func (Noop) Notify(context.Context, Event) {}
