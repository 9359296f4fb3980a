package contextbuilder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/domain/agent"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/board"
	"github.com/marcus-ai/marcus/internal/service/contextbuilder"
)

type stubGraph struct {
	dependents   []string
	criticalPath bool
}

func (g stubGraph) DependentsOf(id string) []string { return g.dependents }
func (g stubGraph) IsOnCriticalPath(id string) bool  { return g.criticalPath }

func TestBuild_MinimalTaskHasOnlyBaseLayers(t *testing.T) {
	p := contextbuilder.Build(agent.Agent{}, task.Task{ID: "t1", Name: "Do a thing"}, stubGraph{}, nil, nil)

	assert.Equal(t, "Do a thing", p.Name)
	assert.Equal(t, []string{"Complete the task as described and leave the system in a working state."}, p.AcceptanceCriteria)
	assert.Empty(t, p.Dependents)
	assert.Empty(t, p.InterfaceContract)
	assert.False(t, p.DecisionLogging)
	assert.Nil(t, p.Predictions)
	assert.Empty(t, p.LabelGuidance)
}

func TestBuild_DependentsAddInterfaceContract(t *testing.T) {
	p := contextbuilder.Build(agent.Agent{}, task.Task{ID: "t1"}, stubGraph{dependents: []string{"t2"}}, nil, nil)

	assert.Equal(t, []string{"t2"}, p.Dependents)
	assert.NotEmpty(t, p.InterfaceContract)
}

func TestBuild_DecisionLoggingOnManyDependentsOrCriticalPath(t *testing.T) {
	byCount := contextbuilder.Build(agent.Agent{}, task.Task{ID: "t1"}, stubGraph{dependents: []string{"a", "b", "c"}}, nil, nil)
	assert.True(t, byCount.DecisionLogging)

	byCriticalPath := contextbuilder.Build(agent.Agent{}, task.Task{ID: "t1"}, stubGraph{criticalPath: true}, nil, nil)
	assert.True(t, byCriticalPath.DecisionLogging)
}

func TestBuild_IncludesHistoryAndPredictionsAndLabelGuidance(t *testing.T) {
	history := []board.ImplementationEntry{{TaskID: "t1", Summary: "first pass"}}
	preds := &contextbuilder.Predictions{SuccessProbability: 0.8}

	p := contextbuilder.Build(agent.Agent{}, task.Task{ID: "t1", Labels: []string{"api", "database"}}, stubGraph{}, history, preds)

	require.Len(t, p.PreviousImplementations, 1)
	require.NotNil(t, p.Predictions)
	assert.Equal(t, 0.8, p.Predictions.SuccessProbability)
	require.Contains(t, p.LabelGuidance, "api")
	require.Contains(t, p.LabelGuidance, "database")
}
