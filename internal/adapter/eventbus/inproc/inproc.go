// Package inproc implements the in-process Event Bus (C8) with a bounded,
// per-subscriber queue and a drop-oldest policy, mirroring the
// subscribe/unsubscribe lifecycle of the teacher's Postgres LISTEN/NOTIFY
// bus but backed by buffered channels instead of pg_notify.
package inproc

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/marcus-ai/marcus/internal/domain/event"
	"github.com/marcus-ai/marcus/internal/port/eventbus"
)

type subscription struct {
	ch        event.Channel
	queue     chan event.Event
	dropped   int64
	cancel    context.CancelFunc
	done      chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}

func (s *subscription) DroppedCount() int64 { return atomic.LoadInt64(&s.dropped) }

type Bus struct {
	mu   sync.RWMutex
	subs map[event.Channel]map[*subscription]struct{}
	log  *slog.Logger

	queueSize int
}

func New(log *slog.Logger, queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &Bus{subs: make(map[event.Channel]map[*subscription]struct{}), log: log, queueSize: queueSize}
}

func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)
	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.subs[ch]))
	for sub := range b.subs[ch] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.queue <- e:
		default:
			// Drop-oldest: make room for the new event rather than block
			// the publisher (§4.8).
			select {
			case <-sub.queue:
			default:
			}
			select {
			case sub.queue <- e:
			default:
			}
			atomic.AddInt64(&sub.dropped, 1)
			if b.log != nil {
				b.log.WarnContext(ctx, "event bus subscriber queue full, dropped an event", "channel", ch, "dropped_total", atomic.LoadInt64(&sub.dropped))
			}
		}
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, ch event.Channel, handler eventbus.Handler) (eventbus.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ch:     ch,
		queue:  make(chan event.Event, b.queueSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.subs[ch] == nil {
		b.subs[ch] = make(map[*subscription]struct{})
	}
	b.subs[ch][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer close(sub.done)
		defer func() {
			b.mu.Lock()
			delete(b.subs[ch], sub)
			b.mu.Unlock()
		}()
		for {
			select {
			case <-subCtx.Done():
				return
			case e := <-sub.queue:
				handler(subCtx, e)
			}
		}
	}()

	return sub, nil
}
