package inproc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/adapter/eventbus/inproc"
	"github.com/marcus-ai/marcus/internal/domain/event"
)

func TestPublish_DeliversToMatchingChannelOnly(t *testing.T) {
	bus := inproc.New(nil, 10)
	ctx := context.Background()

	received := make(chan event.Event, 1)
	sub, err := bus.Subscribe(ctx, event.ChannelLease, func(ctx context.Context, e event.Event) {
		received <- e
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeLeaseRenewed, "t1", nil)))
	require.NoError(t, bus.Publish(ctx, event.New(event.TypeTaskProgress, "t2", nil)))

	select {
	case e := <-received:
		assert.Equal(t, "t1", e.EntityID)
	case <-time.After(time.Second):
		t.Fatal("expected event on lease channel")
	}

	select {
	case e := <-received:
		t.Fatalf("unexpected event delivered to lease subscriber: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	bus := inproc.New(nil, 10)
	ctx := context.Background()

	received := make(chan event.Event, 1)
	sub, err := bus.Subscribe(ctx, event.ChannelTask, func(ctx context.Context, e event.Event) {
		received <- e
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeTaskProgress, "t1", nil)))

	select {
	case e := <-received:
		t.Fatalf("unexpected event after unsubscribe: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_DropOldestUnderBackpressure(t *testing.T) {
	bus := inproc.New(nil, 1)
	ctx := context.Background()

	block := make(chan struct{})
	gotFirst := make(chan struct{})
	var firstBlocked bool
	seen := make(chan string, 2)

	sub, err := bus.Subscribe(ctx, event.ChannelMonitor, func(ctx context.Context, e event.Event) {
		if !firstBlocked {
			firstBlocked = true
			close(gotFirst)
			<-block
		}
		seen <- e.EntityID
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeProblemTask, "first", nil)))
	<-gotFirst // handler is now blocked holding the one queue slot empty

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeProblemTask, "second", nil)))
	require.NoError(t, bus.Publish(ctx, event.New(event.TypeProblemTask, "third", nil)))

	close(block)

	require.Equal(t, "first", <-seen)
	require.Equal(t, "third", <-seen)
}
