// Package lease implements the Lease Manager (C4): time-bounded exclusive
// ownership over a task, plus the global assignment mutex that serializes
// the "select candidate → acquire lease → write ledger → update board"
// sequence described in §4.4/§5.
package lease

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainlease "github.com/marcus-ai/marcus/internal/domain/lease"
	"github.com/marcus-ai/marcus/internal/domain/event"
	"github.com/marcus-ai/marcus/internal/port/eventbus"
)

type Config struct {
	DefaultDuration      time.Duration
	MaxDuration          time.Duration
	MaxRenewals          int
	HeartbeatTimeout     time.Duration
	AutoRenewThreshold   time.Duration
}

func DefaultConfig() Config {
	return Config{
		DefaultDuration:    30 * time.Minute,
		MaxDuration:        240 * time.Minute,
		MaxRenewals:        5,
		HeartbeatTimeout:   10 * time.Minute,
		AutoRenewThreshold: 10 * time.Minute,
	}
}

// Manager holds in-memory leases keyed by task_id and the global assignment
// mutex (§4.4) that every acquire sequence must hold.
type Manager struct {
	cfg Config
	bus eventbus.EventBus

	mu     sync.Mutex // protects leases
	leases map[string]*domainlease.Lease

	// assignMu is the process-wide Global Assignment Mutex (§4.4/§5). It is
	// exported via Lock/Unlock so the coordinator can hold it across the
	// full acquire sequence without the Manager reaching into Board/Oracle
	// calls itself.
	assignMu sync.Mutex
}

func New(cfg Config, bus eventbus.EventBus) *Manager {
	return &Manager{cfg: cfg, bus: bus, leases: make(map[string]*domainlease.Lease)}
}

// LockAssignment / UnlockAssignment expose the Global Assignment Mutex.
// Callers must never call out to the Oracle while holding it (§5).
func (m *Manager) LockAssignment()   { m.assignMu.Lock() }
func (m *Manager) UnlockAssignment() { m.assignMu.Unlock() }

// Acquire returns a new ACTIVE lease for task_id, or nil if one already
// exists and is not expired (§4.4).
func (m *Manager) Acquire(taskID, agentID string, now time.Time) *domainlease.Lease {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.leases[taskID]; ok && !existing.Status.Terminal() && !existing.IsExpired(now) {
		return nil
	}
	l := domainlease.New(taskID, agentID, m.cfg.DefaultDuration, now)
	m.leases[taskID] = &l
	return &l
}

// Restore installs a lease recovered from the ledger at startup (used by
// the Reconciler to rebuild in-memory lease state after a crash).
func (m *Manager) Restore(l domainlease.Lease) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leases[l.TaskID] = &l
}

func (m *Manager) Get(taskID string) (domainlease.Lease, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leases[taskID]
	if !ok {
		return domainlease.Lease{}, false
	}
	return *l, true
}

// Heartbeat implements §4.4's heartbeat semantics, including the
// idempotence property required by §8: repeated calls within the same
// instant never move expires_at backwards, and only extend it forward
// under the auto-renew condition.
func (m *Manager) Heartbeat(ctx context.Context, taskID, agentID string, now time.Time) (bool, error) {
	m.mu.Lock()
	l, ok := m.leases[taskID]
	if !ok || l.AgentID != agentID || l.Status != domainlease.StatusActive {
		m.mu.Unlock()
		return false, nil
	}
	l.Heartbeat(now, m.cfg.AutoRenewThreshold, m.cfg.DefaultDuration, m.cfg.MaxRenewals)
	snapshot := *l
	m.mu.Unlock()

	m.publish(ctx, event.TypeLeaseHeartbeat, taskID, map[string]string{"agent_id": agentID, "renewal_count": fmt.Sprint(snapshot.RenewalCount)})
	return true, nil
}

// Renew implements §4.4's explicit renew operation.
func (m *Manager) Renew(ctx context.Context, taskID, agentID string, extra time.Duration) (bool, error) {
	m.mu.Lock()
	l, ok := m.leases[taskID]
	if !ok || l.AgentID != agentID {
		m.mu.Unlock()
		return false, nil
	}
	err := l.Renew(extra, m.cfg.MaxRenewals)
	snapshot := *l
	m.mu.Unlock()
	if err != nil {
		return false, err
	}
	m.publish(ctx, event.TypeLeaseRenewed, taskID, map[string]string{"agent_id": agentID, "renewal_count": fmt.Sprint(snapshot.RenewalCount)})
	return true, nil
}

// Release is the normal end-of-work path.
func (m *Manager) Release(ctx context.Context, taskID, agentID string) error {
	m.mu.Lock()
	l, ok := m.leases[taskID]
	if !ok {
		m.mu.Unlock()
		return nil // idempotent per §8
	}
	if l.AgentID != agentID {
		m.mu.Unlock()
		return fmt.Errorf("lease: task %s is held by a different agent", taskID)
	}
	if l.Status.Terminal() {
		m.mu.Unlock()
		return nil // idempotent: already released/expired
	}
	err := l.Release()
	delete(m.leases, taskID)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.publish(ctx, event.TypeAssignmentReleased, taskID, map[string]string{"agent_id": agentID})
	return nil
}

// ForceRelease is the admin/reconciler path (§4.4).
func (m *Manager) ForceRelease(ctx context.Context, taskID, reason string) error {
	m.mu.Lock()
	l, ok := m.leases[taskID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	_ = l.ForceRelease()
	delete(m.leases, taskID)
	m.mu.Unlock()
	m.publish(ctx, event.TypeLeaseForcedRelease, taskID, map[string]string{"reason": reason})
	return nil
}

// Tick implements §4.4's periodic expiry scan; called by the Lease Manager's
// own loop (run from the coordinator's supervisor alongside the Reconciler).
func (m *Manager) Tick(ctx context.Context, now time.Time) (expired []domainlease.Lease) {
	m.mu.Lock()
	for taskID, l := range m.leases {
		if l.Status == domainlease.StatusActive && l.IsExpired(now) {
			_ = l.Expire()
			expired = append(expired, *l)
			delete(m.leases, taskID)
		}
	}
	m.mu.Unlock()

	for _, l := range expired {
		m.publish(ctx, event.TypeLeaseExpired, l.TaskID, map[string]string{"agent_id": l.AgentID})
	}
	return expired
}

func (m *Manager) publish(ctx context.Context, t event.Type, entityID string, detail map[string]string) {
	if m.bus == nil {
		return
	}
	_ = m.bus.Publish(ctx, event.New(t, entityID, detail))
}
