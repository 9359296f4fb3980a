// Package oracle declares the capability interface the core requires from
// an external AI inference service (§6.2). The Oracle is optional; every
// caller must degrade gracefully when it is nil or errors.
package oracle

import "context"

// Direction is the inferred relation between an ordered pair of tasks.
type Direction string

const (
	DirectionAToB Direction = "a->b"
	DirectionBToA Direction = "b->a"
	DirectionNone Direction = "none"
)

// PairQuery is one ambiguous task pair submitted for inference (§4.2.3).
type PairQuery struct {
	TaskAID   string
	TaskAName string
	TaskBID   string
	TaskBName string
}

// PairResult is the Oracle's judgment on one queried pair.
type PairResult struct {
	TaskAID    string
	TaskBID    string
	Direction  Direction
	Confidence float64
	Reasoning  string
}

// AgentProfile is the minimal agent summary passed to scoring, avoiding a
// dependency from this port back onto the full agent domain package.
type AgentProfile struct {
	AgentID          string
	Skills           []string
	PerformanceScore float64
	Completed        int
	Failed           int
}

// TaskSummary is the minimal task summary passed to scoring.
type TaskSummary struct {
	TaskID      string
	Name        string
	Description string
	Labels      []string
}

// Score is the Oracle's prediction for one agent/task pairing (§4.5 Phase I).
type Score struct {
	SuccessProbability float64
	Risk               float64
	ExpectedHours      float64
}

// Oracle is the capability interface for the external AI inference service.
type Oracle interface {
	InferPairs(ctx context.Context, batch []PairQuery) ([]PairResult, error)
	ScoreTaskForAgent(ctx context.Context, agent AgentProfile, task TaskSummary) (Score, error)
}
