// Package pooled wraps a board.Board behind a bounded concurrency limit, so
// a misbehaving or slow kanban provider can't let an unbounded number of
// in-flight coordinator/reconciler calls pile up against it (§5: "Board and
// Oracle clients are connection-pooled; pool size configurable, default 4").
// The limiter is a buffered channel used as a counting semaphore, the same
// acquire/release-on-defer shape used for worker-pool concurrency limiting
// elsewhere in the pack.
package pooled

import (
	"context"

	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/board"
)

// DefaultPoolSize is used when a configured pool size is zero or negative.
const DefaultPoolSize = 4

type Board struct {
	inner board.Board
	slots chan struct{}
}

// New wraps inner with a concurrency limit of size (DefaultPoolSize if
// size <= 0).
func New(inner board.Board, size int) *Board {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Board{inner: inner, slots: make(chan struct{}, size)}
}

func (b *Board) acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Board) release() { <-b.slots }

func (b *Board) ListTasks(ctx context.Context) ([]task.Task, error) {
	if err := b.acquire(ctx); err != nil {
		return nil, err
	}
	defer b.release()
	return b.inner.ListTasks(ctx)
}

func (b *Board) UpdateTask(ctx context.Context, taskID string, patch board.Patch) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer b.release()
	return b.inner.UpdateTask(ctx, taskID, patch)
}

func (b *Board) AddComment(ctx context.Context, taskID string, text string) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer b.release()
	return b.inner.AddComment(ctx, taskID, text)
}

func (b *Board) GetImplementationHistory(ctx context.Context, taskID string) ([]board.ImplementationEntry, error) {
	if err := b.acquire(ctx); err != nil {
		return nil, err
	}
	defer b.release()
	return b.inner.GetImplementationHistory(ctx, taskID)
}
