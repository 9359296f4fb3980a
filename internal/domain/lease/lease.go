// Package lease implements the Lease state machine (C4): a time-bounded
// exclusive right to work on a task, protected by heartbeats and renewals.
package lease

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive         Status = "ACTIVE"
	StatusExpired        Status = "EXPIRED"
	StatusReleased       Status = "RELEASED"
	StatusForceReleased  Status = "FORCE_RELEASED"
)

var validTransitions = map[Status][]Status{
	StatusActive:        {StatusActive, StatusExpired, StatusReleased, StatusForceReleased},
	StatusExpired:       {},
	StatusReleased:      {},
	StatusForceReleased: {},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusReleased || s == StatusForceReleased
}

// Lease is the exclusive ownership record over a task, mirrored into the
// Assignment Ledger (C3) as part of the Assignment record.
type Lease struct {
	ID             uuid.UUID `json:"id"`
	TaskID         string    `json:"task_id"`
	AgentID        string    `json:"agent_id"`
	Status         Status    `json:"status"`
	AcquiredAt     time.Time `json:"acquired_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastHeartbeat  time.Time `json:"last_heartbeat"`
	RenewalCount   int       `json:"renewal_count"`
}

// New acquires a fresh ACTIVE lease of the given duration.
func New(taskID, agentID string, duration time.Duration, now time.Time) Lease {
	return Lease{
		ID:            uuid.New(),
		TaskID:        taskID,
		AgentID:       agentID,
		Status:        StatusActive,
		AcquiredAt:    now,
		ExpiresAt:     now.Add(duration),
		LastHeartbeat: now,
	}
}

func (l *Lease) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Heartbeat records liveness and, when the remaining time is below
// autoRenewThreshold, auto-extends the lease by defaultDuration provided the
// renewal cap has not been reached (§4.4).
func (l *Lease) Heartbeat(now time.Time, autoRenewThreshold, defaultDuration time.Duration, maxRenewals int) {
	l.LastHeartbeat = now
	if l.Status != StatusActive {
		return
	}
	if l.ExpiresAt.Sub(now) < autoRenewThreshold && l.RenewalCount < maxRenewals {
		l.ExpiresAt = now.Add(defaultDuration)
		l.RenewalCount++
	}
}

// Renew extends the lease by extra, capped at maxRenewals renewals total.
func (l *Lease) Renew(extra time.Duration, maxRenewals int) error {
	if l.Status != StatusActive {
		return fmt.Errorf("lease: cannot renew a lease in status %s", l.Status)
	}
	if l.RenewalCount >= maxRenewals {
		return fmt.Errorf("lease: renewal cap (%d) reached", maxRenewals)
	}
	l.ExpiresAt = l.ExpiresAt.Add(extra)
	l.RenewalCount++
	return nil
}

func (l *Lease) transition(target Status) error {
	if !l.Status.CanTransitionTo(target) {
		return fmt.Errorf("lease: invalid transition from %s to %s", l.Status, target)
	}
	l.Status = target
	return nil
}

func (l *Lease) Release() error       { return l.transition(StatusReleased) }
func (l *Lease) Expire() error        { return l.transition(StatusExpired) }
func (l *Lease) ForceRelease() error  { return l.transition(StatusForceReleased) }
