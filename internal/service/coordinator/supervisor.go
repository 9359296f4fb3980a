package coordinator

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Supervise runs fn repeatedly until ctx is cancelled. A successful fn call
// resets the backoff; a failing one backs off exponentially (base 1s, cap
// 60s, full jitter) before retrying, per §7's "background loops use an
// outer supervisor with exponential backoff" requirement.
func Supervise(ctx context.Context, log *slog.Logger, name string, fn func(ctx context.Context) error) {
	const (
		base = time.Second
		cap  = 60 * time.Second
	)
	backoff := base

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := fn(ctx); err != nil {
			if log != nil {
				log.ErrorContext(ctx, "supervised loop iteration failed", "loop", name, "error", err)
			}
			jittered := time.Duration(rand.Int63n(int64(backoff)))
			select {
			case <-ctx.Done():
				return
			case <-time.After(jittered):
			}
			backoff *= 2
			if backoff > cap {
				backoff = cap
			}
			continue
		}
		backoff = base
	}
}

// Every runs fn on a fixed period until ctx is cancelled, wrapped by
// Supervise so a panic-free error from fn never kills the loop.
func Every(ctx context.Context, log *slog.Logger, name string, period time.Duration, fn func(ctx context.Context) error) {
	Supervise(ctx, log, name, func(ctx context.Context) error {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			return fn(ctx)
		}
	})
}
