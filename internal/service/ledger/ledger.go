// Package ledger implements the Assignment Ledger (C3): a durable,
// thread-safe map of active assignments with atomic write semantics and
// crash-safe reload. Records are keyed by task_id (not agent_id) so that an
// agent with capacity > 1 can hold more than one ACTIVE assignment (§9 open
// question, resolved: generalize to a multimap rather than defer it).
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/marcus-ai/marcus/internal/domain/assignment"
	"github.com/marcus-ai/marcus/internal/port/ledgerstore"
	"github.com/marcus-ai/marcus/internal/port/locker"
)

const collection = "assignments"

// advisoryKey is the single key the in-process/Postgres advisory locker
// serializes all ledger mutations under, mirroring the teacher's
// fnv.New64a()-derived per-collection key but collapsed to one constant
// since the ledger is a single collection.
const advisoryKey int64 = 0x4c454447_52000001 // "LEDGR" tag, arbitrary

type Service struct {
	store  ledgerstore.Store
	locker locker.AdvisoryLocker

	mu          sync.RWMutex
	byTask      map[string]assignment.Assignment
}

func New(store ledgerstore.Store, lock locker.AdvisoryLocker) *Service {
	return &Service{store: store, locker: lock, byTask: make(map[string]assignment.Assignment)}
}

// Load reads every persisted assignment into memory. Called at startup and
// whenever the caller wants to force a reload from durable storage.
func (s *Service) Load(ctx context.Context) (map[string]assignment.Assignment, error) {
	raw, err := s.store.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("ledger: load: %w", err)
	}

	loaded := make(map[string]assignment.Assignment, len(raw))
	for taskID, blob := range raw {
		var a assignment.Assignment
		if err := json.Unmarshal(blob, &a); err != nil {
			continue // tolerate unknown/corrupt records per §6.4
		}
		loaded[taskID] = a
	}

	s.mu.Lock()
	s.byTask = loaded
	s.mu.Unlock()
	return loaded, nil
}

// Save persists an assignment under task_id, stamping _stored_at, and
// updates the in-memory view. The write is atomic at the store level
// (temp+rename or a single SQL upsert) and serialized by the per-collection
// advisory lock (§4.3).
func (s *Service) Save(ctx context.Context, a assignment.Assignment) error {
	a.StoredAt = time.Now().UTC()
	blob, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("ledger: marshal: %w", err)
	}

	err = s.locker.WithLock(ctx, advisoryKey, func(ctx context.Context) error {
		return s.store.Save(ctx, collection, a.TaskID, blob)
	})
	if err != nil {
		return fmt.Errorf("ledger: save: %w", err)
	}

	s.mu.Lock()
	s.byTask[a.TaskID] = a
	s.mu.Unlock()
	return nil
}

// Remove deletes the assignment for a task, if any.
func (s *Service) Remove(ctx context.Context, taskID string) error {
	err := s.locker.WithLock(ctx, advisoryKey, func(ctx context.Context) error {
		return s.store.Remove(ctx, collection, taskID)
	})
	if err != nil {
		return fmt.Errorf("ledger: remove: %w", err)
	}
	s.mu.Lock()
	delete(s.byTask, taskID)
	s.mu.Unlock()
	return nil
}

func (s *Service) ByTask(taskID string) (assignment.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byTask[taskID]
	return a, ok
}

// ByAgent returns every ACTIVE assignment currently held by agentID,
// ordered by task_id for determinism.
func (s *Service) ByAgent(agentID string) []assignment.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []assignment.Assignment
	for _, a := range s.byTask {
		if a.AgentID == agentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

// All returns a snapshot of every ledger entry, ordered by task_id.
func (s *Service) All() []assignment.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]assignment.Assignment, 0, len(s.byTask))
	for _, a := range s.byTask {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTask)
}
