package memlock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marcus-ai/marcus/internal/adapter/locker/memlock"
)

func TestWithLock_RunsFnAndPropagatesError(t *testing.T) {
	l := memlock.New()
	boom := errors.New("boom")

	err := l.WithLock(context.Background(), 1, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithLock_SerializesSameKey(t *testing.T) {
	l := memlock.New()
	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup

	run := func(tag string, sleep time.Duration) {
		defer wg.Done()
		_ = l.WithLock(context.Background(), 42, func(ctx context.Context) error {
			time.Sleep(sleep)
			mu.Lock()
			order = append(order, tag)
			mu.Unlock()
			return nil
		})
	}

	wg.Add(2)
	go run("first", 20*time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	go run("second", 0)
	wg.Wait()

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestWithLock_DifferentKeysDoNotBlockEachOther(t *testing.T) {
	l := memlock.New()
	done := make(chan struct{})

	go func() {
		_ = l.WithLock(context.Background(), 1, func(ctx context.Context) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		})
	}()
	time.Sleep(5 * time.Millisecond)

	go func() {
		_ = l.WithLock(context.Background(), 2, func(ctx context.Context) error {
			close(done)
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Millisecond):
		t.Fatal("expected distinct key to acquire its lock without waiting on key 1")
	}
}
