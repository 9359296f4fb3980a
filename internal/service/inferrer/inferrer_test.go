package inferrer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/adapter/ledgerstore/fsstore"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/service/inferrer"
)

func newTask(id, name string, status task.Status) task.Task {
	now := time.Now().UTC()
	return task.Task{ID: id, Name: name, Status: status, Priority: task.PriorityMedium, CreatedAt: now, UpdatedAt: now}
}

func newPatternOnlySvc(t *testing.T) *inferrer.Service {
	t.Helper()
	store, err := fsstore.New(t.TempDir(), false)
	require.NoError(t, err)
	return inferrer.New(inferrer.ForPreset(inferrer.PresetPatternOnly), nil, store, nil)
}

func TestInfer_DesignBeforeImplementation(t *testing.T) {
	svc := newPatternOnlySvc(t)

	tasks := []task.Task{
		newTask("t1", "Design the auth schema", task.StatusTODO),
		newTask("t2", "Implement the auth flow", task.StatusTODO),
	}

	result := svc.Infer(context.Background(), tasks)
	require.Nil(t, result.Fatal)
	require.Len(t, result.Edges, 1)
	assert.Equal(t, "t1", result.Edges[0].DependencyTaskID)
	assert.Equal(t, "t2", result.Edges[0].DependentTaskID)
	assert.True(t, result.Edges[0].Mandatory)
}

func TestInfer_DoneDependentBlocksPattern(t *testing.T) {
	svc := newPatternOnlySvc(t)

	// t2 is already DONE while its would-be dependency t1 is not — the
	// logical predicate must refuse to assert that impossible history.
	tasks := []task.Task{
		newTask("t1", "Design the auth schema", task.StatusTODO),
		newTask("t2", "Implement the auth flow", task.StatusDone),
	}

	result := svc.Infer(context.Background(), tasks)
	require.Nil(t, result.Fatal)
	assert.Empty(t, result.Edges)
}

func TestInfer_NoRelationBetweenUnrelatedTasks(t *testing.T) {
	svc := newPatternOnlySvc(t)

	tasks := []task.Task{
		newTask("t1", "Write documentation", task.StatusTODO),
		newTask("t2", "Order lunch", task.StatusTODO),
	}

	result := svc.Infer(context.Background(), tasks)
	require.Nil(t, result.Fatal)
	assert.Empty(t, result.Edges)
}

func TestInfer_FullPipelineOrdersAllFourStages(t *testing.T) {
	svc := newPatternOnlySvc(t)

	tasks := []task.Task{
		newTask("design", "Design the billing schema", task.StatusTODO),
		newTask("impl", "Implement the billing service", task.StatusTODO),
		newTask("test", "Test the billing service", task.StatusTODO),
		newTask("deploy", "Deploy the billing service", task.StatusTODO),
	}

	result := svc.Infer(context.Background(), tasks)
	require.Nil(t, result.Fatal)

	pairs := make(map[[2]string]bool, len(result.Edges))
	for _, e := range result.Edges {
		pairs[[2]string{e.DependencyTaskID, e.DependentTaskID}] = true
	}
	assert.True(t, pairs[[2]string{"design", "impl"}])
	assert.True(t, pairs[[2]string{"impl", "test"}])
	assert.True(t, pairs[[2]string{"test", "deploy"}])
}
