package matcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/domain/agent"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/service/matcher"
)

type stubGraph struct {
	all []task.Task
}

func (g stubGraph) AllTasks() []task.Task         { return g.all }
func (g stubGraph) DependenciesOf(id string) []string { return nil }
func (g stubGraph) DependentsOf(id string) []string   { return nil }

func newAgent(skills ...string) agent.Agent {
	return agent.Agent{ID: "agent-1", Skills: skills, PerformanceScore: 0.5, Capacity: 1}
}

func TestMatch_PicksHigherPriorityWhenSkillsTie(t *testing.T) {
	now := time.Now().UTC()
	low := task.Task{ID: "low", Priority: task.PriorityLow, Labels: []string{"backend"}, Status: task.StatusTODO, CreatedAt: now}
	high := task.Task{ID: "high", Priority: task.PriorityHigh, Labels: []string{"backend"}, Status: task.StatusTODO, CreatedAt: now}

	g := stubGraph{all: []task.Task{low, high}}
	m := matcher.New(g)

	chosen, explanation := m.Match(context.Background(), newAgent("backend"), []task.Task{low, high}, nil, nil, nil)
	require.NotNil(t, chosen)
	assert.Equal(t, "high", chosen.ID)
	assert.NotNil(t, explanation.Chosen)
	assert.False(t, explanation.Chosen.OracleUsed)
}

func TestMatch_SafetyFilterDropsUnmetDependency(t *testing.T) {
	dep := task.Task{ID: "dep", Status: task.StatusTODO}
	candidate := task.Task{ID: "t1", Status: task.StatusTODO, Dependencies: []string{"dep"}}

	g := stubGraph{all: []task.Task{dep, candidate}}
	m := matcher.New(g)

	chosen, explanation := m.Match(context.Background(), newAgent(), []task.Task{candidate}, nil, nil, nil)
	assert.Nil(t, chosen)
	assert.Contains(t, explanation.DroppedSafety, "t1")
}

func TestMatch_SafetyFilterDropsInFlightAndLeased(t *testing.T) {
	a := task.Task{ID: "a", Status: task.StatusTODO}
	b := task.Task{ID: "b", Status: task.StatusTODO}

	g := stubGraph{all: []task.Task{a, b}}
	m := matcher.New(g)

	inFlight := map[string]bool{"a": true}
	leased := func(id string) bool { return id == "b" }

	chosen, explanation := m.Match(context.Background(), newAgent(), []task.Task{a, b}, inFlight, leased, nil)
	assert.Nil(t, chosen)
	assert.ElementsMatch(t, []string{"a", "b"}, explanation.DroppedSafety)
}

func TestMatch_NoCandidatesReturnsNil(t *testing.T) {
	g := stubGraph{}
	m := matcher.New(g)

	chosen, explanation := m.Match(context.Background(), newAgent(), nil, nil, nil, nil)
	assert.Nil(t, chosen)
	assert.Empty(t, explanation.Considered)
}
