// Package reconciler implements the Reconciler/Monitor (C6): startup
// reconciliation and the steady-state reversion monitor.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus-ai/marcus/internal/domain/assignment"
	"github.com/marcus-ai/marcus/internal/domain/event"
	"github.com/marcus-ai/marcus/internal/domain/reversion"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/board"
	"github.com/marcus-ai/marcus/internal/port/eventbus"
)

// Ledger is the subset of the Assignment Ledger service the Reconciler
// needs.
type Ledger interface {
	All() []assignment.Assignment
	Save(ctx context.Context, a assignment.Assignment) error
	Remove(ctx context.Context, taskID string) error
}

// LeaseReleaser is the subset of the Lease Manager the Reconciler drives.
type LeaseReleaser interface {
	ForceRelease(ctx context.Context, taskID, reason string) error
}

type Report struct {
	Removed  int `json:"removed"`
	Restored int `json:"restored"`
	Verified int `json:"verified"`
	Errors   int `json:"errors"`
}

type Service struct {
	board     board.Board
	ledger    Ledger
	lease     LeaseReleaser
	reversion *reversion.Counter
	bus       eventbus.EventBus
	log       *slog.Logger

	defaultLeaseDuration time.Duration
}

func New(b board.Board, l Ledger, lm LeaseReleaser, rev *reversion.Counter, bus eventbus.EventBus, log *slog.Logger, defaultLeaseDuration time.Duration) *Service {
	return &Service{board: b, ledger: l, lease: lm, reversion: rev, bus: bus, log: log, defaultLeaseDuration: defaultLeaseDuration}
}

// StartupReconcile implements §4.6's one-shot reconciliation: remove
// inconsistent assignments, restore orphaned IN_PROGRESS board tasks.
func (s *Service) StartupReconcile(ctx context.Context) (Report, error) {
	tasks, err := s.board.ListTasks(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reconciler: startup board read: %w", err)
	}
	byID := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var report Report
	assigned := make(map[string]bool)
	for _, a := range s.ledger.All() {
		assigned[a.TaskID] = true
		t, ok := byID[a.TaskID]
		if !ok || t.Status != task.StatusInProgress || t.AssignedTo != a.AgentID {
			if err := s.ledger.Remove(ctx, a.TaskID); err != nil {
				report.Errors++
				continue
			}
			report.Removed++
			continue
		}
		report.Verified++
	}

	now := time.Now().UTC()
	for _, t := range tasks {
		if t.Status != task.StatusInProgress || t.AssignedTo == "" || assigned[t.ID] {
			continue
		}
		restored := assignment.Assignment{
			AgentID:        t.AssignedTo,
			TaskID:         t.ID,
			AssignedAt:     now,
			LeaseExpiresAt: now.Add(s.defaultLeaseDuration),
			LastHeartbeat:  now,
			Status:         assignment.StatusActive,
		}
		if err := s.ledger.Save(ctx, restored); err != nil {
			report.Errors++
			continue
		}
		report.Restored++
	}

	s.publish(ctx, event.TypeReconcilerReport, "", map[string]string{
		"removed": fmt.Sprint(report.Removed), "restored": fmt.Sprint(report.Restored),
		"verified": fmt.Sprint(report.Verified), "errors": fmt.Sprint(report.Errors),
	})
	return report, nil
}

// RunCycle implements one pass of §4.6.1's steady-state reversion detection.
// Board read failures are swallowed: the caller sleeps and retries next
// cycle (§4.6 failure semantics).
func (s *Service) RunCycle(ctx context.Context) {
	tasks, err := s.board.ListTasks(ctx)
	if err != nil {
		if s.log != nil {
			s.log.WarnContext(ctx, "reconciler: board read failed, retrying next cycle", "error", err)
		}
		return
	}
	byID := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	for _, a := range s.ledger.All() {
		s.checkOne(ctx, a, byID)
	}
}

func (s *Service) checkOne(ctx context.Context, a assignment.Assignment, byID map[string]task.Task) {
	t, exists := byID[a.TaskID]

	var reason string
	switch {
	case !exists:
		reason = "R5_task_missing"
	case t.Status == task.StatusTODO:
		reason = "R1_reverted_to_todo"
	case t.Status == task.StatusInProgress && t.AssignedTo != a.AgentID:
		reason = "R2_reassigned_out_of_band"
	case t.Status == task.StatusDone && t.AssignedTo != a.AgentID:
		reason = "R3_completed_by_other"
	case t.Status == task.StatusBlocked && t.AssignedTo == "":
		reason = "R4_blocked_unassigned"
	default:
		return
	}

	if err := s.ledger.Remove(ctx, a.TaskID); err != nil {
		if s.log != nil {
			s.log.ErrorContext(ctx, "reconciler: failed to remove reverted assignment, will retry next cycle", "task_id", a.TaskID, "error", err)
		}
		return
	}
	_ = s.lease.ForceRelease(ctx, a.TaskID, reason)
	s.publish(ctx, event.TypeAssignmentReverted, a.TaskID, map[string]string{"agent_id": a.AgentID, "reason": reason})

	count := s.reversion.Increment(a.TaskID)
	if count >= reversion.ProblemThreshold {
		s.publish(ctx, event.TypeProblemTask, a.TaskID, map[string]string{"count": fmt.Sprint(count)})
	}
}

func (s *Service) publish(ctx context.Context, t event.Type, entityID string, detail map[string]string) {
	if s.bus == nil {
		return
	}
	_ = s.bus.Publish(ctx, event.New(t, entityID, detail))
}
