package reconciler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/adapter/board/memboard"
	"github.com/marcus-ai/marcus/internal/adapter/ledgerstore/fsstore"
	"github.com/marcus-ai/marcus/internal/adapter/locker/memlock"
	"github.com/marcus-ai/marcus/internal/domain/assignment"
	"github.com/marcus-ai/marcus/internal/domain/reversion"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/service/ledger"
	"github.com/marcus-ai/marcus/internal/service/reconciler"
)

type stubLeaseReleaser struct {
	released []string
	reasons  map[string]string
}

func (s *stubLeaseReleaser) ForceRelease(ctx context.Context, taskID, reason string) error {
	s.released = append(s.released, taskID)
	if s.reasons == nil {
		s.reasons = make(map[string]string)
	}
	s.reasons[taskID] = reason
	return nil
}

func newSvc(t *testing.T, b *memboard.Board) (*reconciler.Service, *ledger.Service, *stubLeaseReleaser) {
	t.Helper()
	store, err := fsstore.New(t.TempDir(), false)
	require.NoError(t, err)
	ledgerSvc := ledger.New(store, memlock.New())
	releaser := &stubLeaseReleaser{}
	svc := reconciler.New(b, ledgerSvc, releaser, reversion.NewCounter(), nil, nil, 30*time.Minute)
	return svc, ledgerSvc, releaser
}

func TestStartupReconcile_RemovesInconsistentAssignment(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{{ID: "t1", Status: task.StatusDone}})
	svc, ledgerSvc, _ := newSvc(t, b)

	require.NoError(t, ledgerSvc.Save(context.Background(), assignment.Assignment{TaskID: "t1", AgentID: "agent-1", Status: assignment.StatusActive}))

	report, err := svc.StartupReconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Removed)

	_, ok := ledgerSvc.ByTask("t1")
	assert.False(t, ok)
}

func TestStartupReconcile_VerifiesConsistentAssignment(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{{ID: "t1", Status: task.StatusInProgress, AssignedTo: "agent-1"}})
	svc, ledgerSvc, _ := newSvc(t, b)

	require.NoError(t, ledgerSvc.Save(context.Background(), assignment.Assignment{TaskID: "t1", AgentID: "agent-1", Status: assignment.StatusActive}))

	report, err := svc.StartupReconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Verified)
}

func TestStartupReconcile_RestoresOrphanedInProgressTask(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{{ID: "t1", Status: task.StatusInProgress, AssignedTo: "agent-1"}})
	svc, ledgerSvc, _ := newSvc(t, b)

	report, err := svc.StartupReconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Restored)

	got, ok := ledgerSvc.ByTask("t1")
	require.True(t, ok)
	assert.Equal(t, "agent-1", got.AgentID)
}

func TestRunCycle_RevertsToTODOReleasesAndCounts(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{{ID: "t1", Status: task.StatusTODO}})
	svc, ledgerSvc, releaser := newSvc(t, b)
	require.NoError(t, ledgerSvc.Save(context.Background(), assignment.Assignment{TaskID: "t1", AgentID: "agent-1"}))

	svc.RunCycle(context.Background())

	_, ok := ledgerSvc.ByTask("t1")
	assert.False(t, ok)
	require.Len(t, releaser.released, 1)
	assert.Equal(t, "R1_reverted_to_todo", releaser.reasons["t1"])
}

func TestRunCycle_NoChangeLeavesAssignmentIntact(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{{ID: "t1", Status: task.StatusInProgress, AssignedTo: "agent-1"}})
	svc, ledgerSvc, releaser := newSvc(t, b)
	require.NoError(t, ledgerSvc.Save(context.Background(), assignment.Assignment{TaskID: "t1", AgentID: "agent-1"}))

	svc.RunCycle(context.Background())

	_, ok := ledgerSvc.ByTask("t1")
	assert.True(t, ok)
	assert.Empty(t, releaser.released)
}
