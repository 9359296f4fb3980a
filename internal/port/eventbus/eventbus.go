// Package eventbus declares the in-process pub/sub interface for the Event
// Bus (C8, §4.8).
package eventbus

import (
	"context"

	"github.com/marcus-ai/marcus/internal/domain/event"
)

type Handler func(ctx context.Context, e event.Event)

type Subscription interface {
	Unsubscribe()
}

// EventBus is in-process fan-out. A slow subscriber must never block the
// publisher: implementations use a bounded per-subscriber queue with
// drop-oldest and a dropped-count metric (§4.8).
type EventBus interface {
	Publish(ctx context.Context, e event.Event) error
	Subscribe(ctx context.Context, ch event.Channel, handler Handler) (Subscription, error)
}
