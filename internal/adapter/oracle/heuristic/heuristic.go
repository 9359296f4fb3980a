// Package heuristic implements a pattern-only, no-network oracle.Oracle
// stand-in. It is used when no AI inference backend is configured — the
// Dependency Inferer and Task Matcher still exercise their Oracle-assisted
// code paths, but the judgments come from simple lexical/class heuristics
// instead of a model call.
package heuristic

import (
	"context"
	"strings"

	"github.com/marcus-ai/marcus/internal/port/oracle"
)

type Oracle struct{}

func New() *Oracle {
	return &Oracle{}
}

// InferPairs guesses a direction from the class keywords embedded in each
// task name: if one name carries an earlier-class keyword (design,
// infrastructure) and the other a later one (testing, deployment), that
// ordering is reported with moderate confidence. Otherwise no relation is
// reported.
func (o *Oracle) InferPairs(ctx context.Context, batch []oracle.PairQuery) ([]oracle.PairResult, error) {
	out := make([]oracle.PairResult, 0, len(batch))
	for _, q := range batch {
		rankA := classRank(q.TaskAName)
		rankB := classRank(q.TaskBName)

		switch {
		case rankA < rankB:
			out = append(out, oracle.PairResult{
				TaskAID: q.TaskAID, TaskBID: q.TaskBID,
				Direction: oracle.DirectionAToB, Confidence: 0.7,
				Reasoning: "heuristic: earlier-stage keyword precedes later-stage keyword",
			})
		case rankB < rankA:
			out = append(out, oracle.PairResult{
				TaskAID: q.TaskAID, TaskBID: q.TaskBID,
				Direction: oracle.DirectionBToA, Confidence: 0.7,
				Reasoning: "heuristic: earlier-stage keyword precedes later-stage keyword",
			})
		default:
			out = append(out, oracle.PairResult{
				TaskAID: q.TaskAID, TaskBID: q.TaskBID,
				Direction: oracle.DirectionNone, Confidence: 0.3,
				Reasoning: "heuristic: no discernible stage ordering",
			})
		}
	}
	return out, nil
}

// ScoreTaskForAgent derives a success probability from skill overlap and
// the agent's running performance score, and a risk inversely related to
// that same overlap.
func (o *Oracle) ScoreTaskForAgent(ctx context.Context, agent oracle.AgentProfile, t oracle.TaskSummary) (oracle.Score, error) {
	overlap := skillOverlap(agent.Skills, t.Labels)

	success := 0.5*overlap + 0.5*agent.PerformanceScore
	if success > 1 {
		success = 1
	}
	risk := 1 - overlap
	if risk < 0 {
		risk = 0
	}

	return oracle.Score{
		SuccessProbability: success,
		Risk:               risk,
		ExpectedHours:      0,
	}, nil
}

var stageKeywords = []struct {
	rank     int
	keywords []string
}{
	{0, []string{"infra", "infrastructure", "setup", "design", "spec", "architecture"}},
	{1, []string{"implement", "build", "develop", "feature"}},
	{2, []string{"test", "qa", "verify"}},
	{3, []string{"deploy", "release", "ship"}},
}

func classRank(name string) int {
	lower := strings.ToLower(name)
	for _, sk := range stageKeywords {
		for _, kw := range sk.keywords {
			if strings.Contains(lower, kw) {
				return sk.rank
			}
		}
	}
	return 1 // default to the implementation tier when no keyword matches
}

func skillOverlap(skills, labels []string) float64 {
	if len(labels) == 0 {
		return 0.5
	}
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		set[strings.ToLower(s)] = true
	}
	matched := 0
	for _, l := range labels {
		if set[strings.ToLower(l)] {
			matched++
		}
	}
	return float64(matched) / float64(len(labels))
}

var _ oracle.Oracle = (*Oracle)(nil)
