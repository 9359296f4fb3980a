package heuristic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/adapter/oracle/heuristic"
	"github.com/marcus-ai/marcus/internal/port/oracle"
)

func TestInferPairs_EarlierStagePrecedesLater(t *testing.T) {
	o := heuristic.New()

	results, err := o.InferPairs(context.Background(), []oracle.PairQuery{
		{TaskAID: "a", TaskAName: "Design the schema", TaskBID: "b", TaskBName: "Deploy to production"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, oracle.DirectionAToB, results[0].Direction)
	assert.Greater(t, results[0].Confidence, 0.5)
}

func TestInferPairs_ReverseOrderDetected(t *testing.T) {
	o := heuristic.New()

	results, err := o.InferPairs(context.Background(), []oracle.PairQuery{
		{TaskAID: "a", TaskAName: "Ship the release", TaskBID: "b", TaskBName: "Write the architecture spec"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, oracle.DirectionBToA, results[0].Direction)
}

func TestInferPairs_SameStageReportsNone(t *testing.T) {
	o := heuristic.New()

	results, err := o.InferPairs(context.Background(), []oracle.PairQuery{
		{TaskAID: "a", TaskAName: "Implement login", TaskBID: "b", TaskBName: "Build signup flow"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, oracle.DirectionNone, results[0].Direction)
}

func TestScoreTaskForAgent_FullOverlapAndPerformance(t *testing.T) {
	o := heuristic.New()

	score, err := o.ScoreTaskForAgent(context.Background(), oracle.AgentProfile{
		Skills:           []string{"backend", "go"},
		PerformanceScore: 1,
	}, oracle.TaskSummary{Labels: []string{"backend", "go"}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, score.SuccessProbability)
	assert.Equal(t, 0.0, score.Risk)
}

func TestScoreTaskForAgent_NoOverlap(t *testing.T) {
	o := heuristic.New()

	score, err := o.ScoreTaskForAgent(context.Background(), oracle.AgentProfile{
		Skills:           []string{"frontend"},
		PerformanceScore: 0,
	}, oracle.TaskSummary{Labels: []string{"backend"}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.SuccessProbability)
	assert.Equal(t, 1.0, score.Risk)
}

func TestScoreTaskForAgent_NoLabelsDefaultsToMidOverlap(t *testing.T) {
	o := heuristic.New()

	score, err := o.ScoreTaskForAgent(context.Background(), oracle.AgentProfile{
		Skills:           []string{"backend"},
		PerformanceScore: 0,
	}, oracle.TaskSummary{Labels: nil})
	require.NoError(t, err)
	assert.Equal(t, 0.25, score.SuccessProbability)
	assert.Equal(t, 0.5, score.Risk)
}
