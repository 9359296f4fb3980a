// Package locker declares the advisory-lock capability used to serialize
// per-collection ledger writes and, when the Postgres backend is selected,
// cross-process critical sections via session advisory locks.
package locker

import "context"

// AdvisoryLocker serializes a critical section keyed by an int64. The
// Postgres implementation must acquire and release pg_advisory_lock on the
// same connection; the default in-process implementation keys a plain
// sync.Mutex map.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
