// Package memlock implements the default, single-process AdvisoryLocker
// using a sync.Mutex per key, for deployments that do not configure the
// Postgres ledger backend.
package memlock

import (
	"context"
	"sync"

	"github.com/marcus-ai/marcus/internal/port/locker"
)

type Locker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New() *Locker {
	return &Locker{locks: make(map[int64]*sync.Mutex)}
}

func (l *Locker) keyLock(key int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	m := l.keyLock(key)
	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

var _ locker.AdvisoryLocker = (*Locker)(nil)
