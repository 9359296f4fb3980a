package memboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/adapter/board/memboard"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/board"
)

func TestListTasks_SortedByID(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{
		{ID: "t2", Status: task.StatusTODO},
		{ID: "t1", Status: task.StatusTODO},
	})

	tasks, err := b.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "t2", tasks[1].ID)
}

func TestUpdateTask_AppliesPatchAndNote(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{{ID: "t1", Status: task.StatusTODO}})

	status := task.StatusInProgress
	assignee := "agent-1"
	err := b.UpdateTask(context.Background(), "t1", board.Patch{
		Status: &status, AssignedTo: &assignee, Comment: "starting work",
	})
	require.NoError(t, err)

	tasks, _ := b.ListTasks(context.Background())
	require.Len(t, tasks, 1)
	assert.Equal(t, task.StatusInProgress, tasks[0].Status)
	assert.Equal(t, "agent-1", tasks[0].AssignedTo)
}

func TestUpdateTask_UnknownTask(t *testing.T) {
	b := memboard.New()
	err := b.UpdateTask(context.Background(), "missing", board.Patch{})
	assert.Error(t, err)
}

func TestGetImplementationHistory(t *testing.T) {
	b := memboard.New()
	b.Seed([]task.Task{{ID: "t1", Status: task.StatusTODO}})
	b.SeedHistory("t1", []board.ImplementationEntry{{TaskID: "t1", Summary: "first pass"}})

	history, err := b.GetImplementationHistory(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "first pass", history[0].Summary)
}

func TestGetImplementationHistory_None(t *testing.T) {
	b := memboard.New()
	history, err := b.GetImplementationHistory(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, history)
}
