package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marcus-ai/marcus/internal/adapter/eventbus/inproc"
	"github.com/marcus-ai/marcus/internal/adapter/ledgerstore/fsstore"
	"github.com/marcus-ai/marcus/internal/adapter/locker/memlock"
	"github.com/marcus-ai/marcus/internal/domain/errs"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/mocks"
	"github.com/marcus-ai/marcus/internal/port/board"
	"github.com/marcus-ai/marcus/internal/service/coordinator"
	"github.com/marcus-ai/marcus/internal/service/graph"
	"github.com/marcus-ai/marcus/internal/service/inferrer"
	"github.com/marcus-ai/marcus/internal/service/ledger"
	"github.com/marcus-ai/marcus/internal/service/lease"
	"github.com/marcus-ai/marcus/internal/service/matcher"
)

// svcDeps bundles everything newCoordSvc wires together, mirroring the
// teacher's svcDeps/newTaskSvc helper pattern so each test only stubs the
// boundary it cares about.
type svcDeps struct {
	board *mocks.MockBoard
}

func newCoordSvc(t *testing.T) (*coordinator.Service, svcDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	d := svcDeps{board: mocks.NewMockBoard(ctrl)}

	store, err := fsstore.New(t.TempDir(), false)
	require.NoError(t, err)

	bus := inproc.New(nil, 100)
	ledgerSvc := ledger.New(store, memlock.New())
	graphSvc := graph.New()
	leaseMgr := lease.New(lease.DefaultConfig(), bus)
	matcherSvc := matcher.New(graphSvc)
	inferrerSvc := inferrer.New(inferrer.DefaultConfig(), nil, store, nil)

	svc := coordinator.New(coordinator.DefaultConfig(), d.board, nil, graphSvc, ledgerSvc, leaseMgr, matcherSvc, inferrerSvc, bus, nil)
	return svc, d
}

func newTask(id string, status task.Status) task.Task {
	now := time.Now().UTC()
	return task.Task{
		ID:        id,
		Name:      "Implement " + id,
		Status:    status,
		Priority:  task.PriorityMedium,
		Labels:    []string{"backend"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRegisterAgent(t *testing.T) {
	svc, _ := newCoordSvc(t)

	capacity, err := svc.RegisterAgent("agent-1", "Alice", "engineer", []string{"backend"})
	require.NoError(t, err)
	assert.Equal(t, 1, capacity)
}

func TestRegisterAgent_MissingFields(t *testing.T) {
	svc, _ := newCoordSvc(t)

	_, err := svc.RegisterAgent("", "Alice", "engineer", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestRequestNextTask_NotRegistered(t *testing.T) {
	svc, _ := newCoordSvc(t)

	_, err := svc.RequestNextTask(context.Background(), "ghost-agent")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotRegistered)
}

func TestRequestNextTask_AllBlocked(t *testing.T) {
	svc, d := newCoordSvc(t)
	ctx := context.Background()

	_, err := svc.RegisterAgent("agent-1", "Alice", "engineer", []string{"backend"})
	require.NoError(t, err)

	d.board.EXPECT().ListTasks(gomock.Any()).Return([]task.Task{
		newTask("t1", task.StatusDone),
	}, nil)

	result, err := svc.RequestNextTask(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "all_blocked", result.ReasonIfNone)
	assert.Nil(t, result.Task)
}

func TestRequestNextTask_AssignsAndPersists(t *testing.T) {
	svc, d := newCoordSvc(t)
	ctx := context.Background()

	_, err := svc.RegisterAgent("agent-1", "Alice", "engineer", []string{"backend"})
	require.NoError(t, err)

	d.board.EXPECT().ListTasks(gomock.Any()).Return([]task.Task{
		newTask("t1", task.StatusTODO),
	}, nil)
	d.board.EXPECT().UpdateTask(gomock.Any(), "t1", gomock.Any()).Return(nil)
	// Context is built twice: once for the new assignment, once on resume.
	d.board.EXPECT().GetImplementationHistory(gomock.Any(), "t1").Return(nil, nil).Times(2)

	result, err := svc.RequestNextTask(ctx, "agent-1")
	require.NoError(t, err)
	require.NotNil(t, result.Task)
	assert.Equal(t, "t1", result.Task.ID)
	require.NotNil(t, result.Instructions)

	// A second request resumes the same in-flight assignment without
	// listing or updating tasks on the board again (ledger lookup
	// short-circuits it); only the context's history lookup repeats.
	result2, err := svc.RequestNextTask(ctx, "agent-1")
	require.NoError(t, err)
	require.NotNil(t, result2.Task)
	assert.Equal(t, "t1", result2.Task.ID)
}

func TestReportTaskProgress_NotAssigned(t *testing.T) {
	svc, _ := newCoordSvc(t)

	err := svc.ReportTaskProgress(context.Background(), "agent-1", "t1", "in_progress", 50, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotAssigned)
}

func TestReportTaskProgress_CompletedReleasesTask(t *testing.T) {
	svc, d := newCoordSvc(t)
	ctx := context.Background()

	_, err := svc.RegisterAgent("agent-1", "Alice", "engineer", []string{"backend"})
	require.NoError(t, err)

	d.board.EXPECT().ListTasks(gomock.Any()).Return([]task.Task{
		newTask("t1", task.StatusTODO),
	}, nil)
	d.board.EXPECT().UpdateTask(gomock.Any(), "t1", gomock.Any()).Return(nil)
	d.board.EXPECT().GetImplementationHistory(gomock.Any(), "t1").Return(nil, nil)

	_, err = svc.RequestNextTask(ctx, "agent-1")
	require.NoError(t, err)

	var gotPatch board.Patch
	d.board.EXPECT().UpdateTask(gomock.Any(), "t1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, p board.Patch) error {
			gotPatch = p
			return nil
		})

	err = svc.ReportTaskProgress(ctx, "agent-1", "t1", "completed", 100, "done")
	require.NoError(t, err)
	require.NotNil(t, gotPatch.Status)
	assert.Equal(t, task.StatusDone, *gotPatch.Status)
}

func TestRelease_Idempotent(t *testing.T) {
	svc, d := newCoordSvc(t)
	ctx := context.Background()

	d.board.EXPECT().UpdateTask(gomock.Any(), "t1", gomock.Any()).Return(nil).AnyTimes()

	require.NoError(t, svc.Release(ctx, "agent-1", "t1"))
	require.NoError(t, svc.Release(ctx, "agent-1", "t1"))
}

func TestPing_Levels(t *testing.T) {
	svc, _ := newCoordSvc(t)

	basic := svc.Ping(coordinator.PingBasic)
	assert.True(t, basic.OK)
	assert.Zero(t, basic.RegisteredAgents)

	_, err := svc.RegisterAgent("agent-1", "Alice", "engineer", nil)
	require.NoError(t, err)

	standard := svc.Ping(coordinator.PingStandard)
	assert.Equal(t, 1, standard.RegisteredAgents)

	diagnostic := svc.Ping(coordinator.PingDiagnostic)
	assert.Empty(t, diagnostic.Diagnostics)
}
