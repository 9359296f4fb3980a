// Package board declares the capability interface the core requires from
// any kanban provider (§6.1). The core never imports a concrete Board
// client; it depends only on this interface.
package board

import (
	"context"

	"github.com/marcus-ai/marcus/internal/domain/task"
)

// Patch is a partial update applied to a task via UpdateTask.
type Patch struct {
	Status     *task.Status
	AssignedTo *string
	Comment    string
}

// ImplementationEntry is one historical implementation record used by the
// Context Builder's "previous implementations" layer (§4.7).
type ImplementationEntry struct {
	TaskID  string
	Summary string
	FilesTouched []string
}

// Board is the capability interface the Assignment Coordination Core needs
// from an external kanban system of record.
type Board interface {
	// ListTasks returns a consistent full snapshot. The provider MUST NOT
	// interleave partial updates within one call (§6.1).
	ListTasks(ctx context.Context) ([]task.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch Patch) error
	AddComment(ctx context.Context, taskID string, text string) error
	// GetImplementationHistory is optional; implementations that do not
	// support it return (nil, nil).
	GetImplementationHistory(ctx context.Context, taskID string) ([]ImplementationEntry, error)
}
