package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/domain/graph"
	"github.com/marcus-ai/marcus/internal/domain/task"
)

func TestUpsert_ResolvesSymbolicDependency(t *testing.T) {
	g := graph.New()

	dropped := g.Upsert(task.Task{ID: "t1", Description: "Original ID: T-1"})
	assert.Empty(t, dropped)

	dropped = g.Upsert(task.Task{ID: "t2", Dependencies: []string{"T-1"}})
	assert.Empty(t, dropped)
	assert.Equal(t, []string{"t1"}, g.DependenciesOf("t2"))
	assert.Equal(t, []string{"t2"}, g.DependentsOf("t1"))
}

func TestUpsert_DropsUnresolvedDependency(t *testing.T) {
	g := graph.New()

	dropped := g.Upsert(task.Task{ID: "t1", Dependencies: []string{"ghost"}})
	assert.Equal(t, []string{"ghost"}, dropped)
	assert.Empty(t, g.DependenciesOf("t1"))
}

func TestAddEdgeAndHasCycle(t *testing.T) {
	g := graph.New()
	g.Upsert(task.Task{ID: "a"})
	g.Upsert(task.Task{ID: "b"})
	g.Upsert(task.Task{ID: "c"})

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	assert.False(t, g.HasCycle())

	g.AddEdge("c", "a")
	assert.True(t, g.HasCycle())

	g.RemoveEdge("c", "a")
	assert.False(t, g.HasCycle())
}

func TestTopologicalOrder(t *testing.T) {
	g := graph.New()
	g.Upsert(task.Task{ID: "a"})
	g.Upsert(task.Task{ID: "b"})
	g.Upsert(task.Task{ID: "c"})
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopologicalOrder_CycleErrors(t *testing.T) {
	g := graph.New()
	g.Upsert(task.Task{ID: "a"})
	g.Upsert(task.Task{ID: "b"})
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	_, err := g.TopologicalOrder()
	assert.Error(t, err)
}

func TestCriticalPath_PicksLongestByHours(t *testing.T) {
	g := graph.New()
	g.Upsert(task.Task{ID: "a", EstimatedHours: 1})
	g.Upsert(task.Task{ID: "b", EstimatedHours: 2})
	g.Upsert(task.Task{ID: "c", EstimatedHours: 10})
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")

	path := g.CriticalPath()
	assert.Equal(t, []string{"a", "c"}, path)
	assert.True(t, g.IsOnCriticalPath("c"))
	assert.False(t, g.IsOnCriticalPath("b"))
}

func TestRemove_ClearsBothDirections(t *testing.T) {
	g := graph.New()
	g.Upsert(task.Task{ID: "a"})
	g.Upsert(task.Task{ID: "b"})
	g.AddEdge("a", "b")

	g.Remove("a")
	_, ok := g.Get("a")
	assert.False(t, ok)
	assert.Empty(t, g.DependenciesOf("b"))
}
