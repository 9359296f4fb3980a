// Package pooled wraps an oracle.Oracle behind a bounded concurrency limit,
// the Oracle-side half of §5's "Board and Oracle clients are
// connection-pooled; pool size configurable, default 4". See
// adapter/board/pooled for the matching Board-side wrapper; both use the
// same buffered-channel counting semaphore.
package pooled

import (
	"context"

	"github.com/marcus-ai/marcus/internal/port/oracle"
)

const DefaultPoolSize = 4

type Oracle struct {
	inner oracle.Oracle
	slots chan struct{}
}

func New(inner oracle.Oracle, size int) *Oracle {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Oracle{inner: inner, slots: make(chan struct{}, size)}
}

func (o *Oracle) acquire(ctx context.Context) error {
	select {
	case o.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Oracle) release() { <-o.slots }

func (o *Oracle) InferPairs(ctx context.Context, batch []oracle.PairQuery) ([]oracle.PairResult, error) {
	if err := o.acquire(ctx); err != nil {
		return nil, err
	}
	defer o.release()
	return o.inner.InferPairs(ctx, batch)
}

func (o *Oracle) ScoreTaskForAgent(ctx context.Context, agent oracle.AgentProfile, t oracle.TaskSummary) (oracle.Score, error) {
	if err := o.acquire(ctx); err != nil {
		return oracle.Score{}, err
	}
	defer o.release()
	return o.inner.ScoreTaskForAgent(ctx, agent, t)
}
