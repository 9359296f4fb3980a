// Package memboard implements an in-memory board.Board, used as the
// default standalone backend and in tests. It is not a production kanban
// client — a real deployment wires a concrete Board client (Linear,
// GitHub Projects, etc.) behind the same port; that client is external to
// this repository per the external-collaborator boundary.
package memboard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/board"
)

type Board struct {
	mu      sync.RWMutex
	tasks   map[string]task.Task
	history map[string][]board.ImplementationEntry
	notes   map[string][]string
}

func New() *Board {
	return &Board{
		tasks:   make(map[string]task.Task),
		history: make(map[string][]board.ImplementationEntry),
		notes:   make(map[string][]string),
	}
}

// Seed installs an initial task set, for test fixtures and local demos.
func (b *Board) Seed(tasks []task.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range tasks {
		b.tasks[t.ID] = t
	}
}

// SeedHistory installs implementation history for a task, for test fixtures.
func (b *Board) SeedHistory(taskID string, entries []board.ImplementationEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history[taskID] = entries
}

func (b *Board) ListTasks(ctx context.Context) ([]task.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]task.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Board) UpdateTask(ctx context.Context, taskID string, patch board.Patch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tasks[taskID]
	if !ok {
		return fmt.Errorf("memboard: task %s not found", taskID)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
	}
	b.tasks[taskID] = t
	if patch.Comment != "" {
		b.notes[taskID] = append(b.notes[taskID], patch.Comment)
	}
	return nil
}

func (b *Board) AddComment(ctx context.Context, taskID string, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tasks[taskID]; !ok {
		return fmt.Errorf("memboard: task %s not found", taskID)
	}
	b.notes[taskID] = append(b.notes[taskID], text)
	return nil
}

func (b *Board) GetImplementationHistory(ctx context.Context, taskID string) ([]board.ImplementationEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history[taskID], nil
}

var _ board.Board = (*Board)(nil)
