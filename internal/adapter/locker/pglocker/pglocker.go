// Package pglocker implements the optional Postgres-backed AdvisoryLocker,
// selected when the ledger backend is configured to Postgres, using
// session-level pg_advisory_lock.
package pglocker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcus-ai/marcus/internal/domain/errs"
	"github.com/marcus-ai/marcus/internal/port/locker"
)

type Locker struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Locker {
	return &Locker{pool: pool}
}

// WithLock acquires and releases the advisory lock on the same pooled
// connection: pg_advisory_lock is session-scoped, so unlocking from a
// different connection would silently be a no-op.
func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: pglocker: acquire connection: %v", errs.ErrInternal, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", key); err != nil {
		return fmt.Errorf("%w: pglocker: acquire advisory lock: %v", errs.ErrInternal, err)
	}
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", key) //nolint:errcheck

	return fn(ctx)
}

var _ locker.AdvisoryLocker = (*Locker)(nil)
