// Package assignment defines the Assignment record persisted by the
// Assignment Ledger (C3).
package assignment

import "time"

type Status string

const (
	StatusActive         Status = "ACTIVE"
	StatusExpired        Status = "EXPIRED"
	StatusReleased       Status = "RELEASED"
	StatusForceReleased  Status = "FORCE_RELEASED"
)

// Assignment is the durable record that an agent owns a task for the
// duration of a lease. StoredAt is stamped automatically by the ledger on
// every write (§4.3).
type Assignment struct {
	AgentID        string            `json:"agent_id"`
	TaskID         string            `json:"task_id"`
	AssignedAt     time.Time         `json:"assigned_at"`
	LeaseExpiresAt time.Time         `json:"lease_expires_at"`
	LastHeartbeat  time.Time         `json:"last_heartbeat"`
	RenewalCount   int               `json:"renewal_count"`
	Status         Status            `json:"status"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	StoredAt       time.Time         `json:"_stored_at"`
}
