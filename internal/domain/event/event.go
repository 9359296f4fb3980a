// Package event defines the event sum type published on the in-process
// Event Bus (C8, §4.8). Events carry identifiers and a small payload, not
// full entity state; subscribers that need more fetch it from the Graph,
// Ledger or Board themselves.
package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAssignmentAcquired   Type = "ASSIGNMENT_ACQUIRED"
	TypeAssignmentReleased   Type = "ASSIGNMENT_RELEASED"
	TypeAssignmentReverted   Type = "ASSIGNMENT_REVERTED"
	TypeLeaseRenewed         Type = "LEASE_RENEWED"
	TypeLeaseExpired         Type = "LEASE_EXPIRED"
	TypeLeaseHeartbeat       Type = "LEASE_HEARTBEAT"
	TypeLeaseForcedRelease   Type = "LEASE_FORCED_RELEASE"
	TypeTaskStarted          Type = "TASK_STARTED"
	TypeTaskProgress         Type = "TASK_PROGRESS"
	TypeTaskBlocked          Type = "TASK_BLOCKED"
	TypeTaskCompleted        Type = "TASK_COMPLETED"
	TypeDependencyInferred   Type = "DEPENDENCY_INFERRED"
	TypeReconcilerReport     Type = "RECONCILER_REPORT"
	TypeProblemTask          Type = "PROBLEM_TASK"
)

// Channel groups related event types onto one fan-out topic so a subscriber
// interested only in, say, lease lifecycle does not pay for task-progress
// noise.
type Channel string

const (
	ChannelAssignment Channel = "assignment"
	ChannelLease      Channel = "lease"
	ChannelTask       Channel = "task"
	ChannelDependency Channel = "dependency"
	ChannelMonitor    Channel = "monitor"
)

var typeToChannel = map[Type]Channel{
	TypeAssignmentAcquired: ChannelAssignment,
	TypeAssignmentReleased: ChannelAssignment,
	TypeAssignmentReverted: ChannelAssignment,
	TypeLeaseRenewed:       ChannelLease,
	TypeLeaseExpired:       ChannelLease,
	TypeLeaseHeartbeat:     ChannelLease,
	TypeLeaseForcedRelease: ChannelLease,
	TypeTaskStarted:        ChannelTask,
	TypeTaskProgress:       ChannelTask,
	TypeTaskBlocked:        ChannelTask,
	TypeTaskCompleted:      ChannelTask,
	TypeDependencyInferred: ChannelDependency,
	TypeReconcilerReport:   ChannelMonitor,
	TypeProblemTask:        ChannelMonitor,
}

func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event is the payload published on the bus. EntityID is a task_id,
// agent_id, or lease id depending on Type; Detail carries small,
// type-specific extras (e.g. a reversion count) without growing into full
// entity state.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Type      Type              `json:"type"`
	EntityID  string            `json:"entity_id"`
	Detail    map[string]string `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func New(t Type, entityID string, detail map[string]string) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		EntityID:  entityID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}
}
