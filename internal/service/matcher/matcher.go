// Package matcher implements the Task Matcher (C5): a multi-phase scorer
// that selects the optimal task for an agent.
package matcher

import (
	"context"

	"github.com/marcus-ai/marcus/internal/domain/agent"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/oracle"
)

// Graph is the subset of the Task Graph service the Matcher needs.
type Graph interface {
	DependenciesOf(id string) []string
	DependentsOf(id string) []string
	AllTasks() []task.Task
}

// LeaseChecker reports whether a task is currently the subject of an
// ACTIVE lease (Phase S(d)).
type LeaseChecker func(taskID string) bool

type Scoring struct {
	TaskID             string  `json:"task_id"`
	SkillMatch         float64 `json:"skill_match"`
	PriorityScore      float64 `json:"priority_score"`
	DependencyScore    float64 `json:"dependency_score"`
	SuccessProbability float64 `json:"success_probability"`
	Risk               float64 `json:"risk"`
	Score              float64 `json:"score"`
	OracleUsed         bool    `json:"oracle_used"`
}

type Explanation struct {
	Chosen      *Scoring   `json:"chosen"`
	Considered  []Scoring  `json:"considered"`
	DroppedSafety []string `json:"dropped_by_safety,omitempty"`
}

type Service struct {
	graph Graph
}

func New(graph Graph) *Service {
	return &Service{graph: graph}
}

// Match runs Phases S, D, M, I in order and returns the chosen task and the
// scoring explanation for the context payload.
func (s *Service) Match(ctx context.Context, ag agent.Agent, candidates []task.Task, inFlight map[string]bool, leased LeaseChecker, ora oracle.Oracle) (*task.Task, Explanation) {
	survivors, dropped := s.safetyFilter(candidates, inFlight, leased)

	unblockCounts := s.unblockCounts(survivors)

	var scorings []Scoring
	byID := make(map[string]task.Task, len(survivors))
	for _, t := range survivors {
		byID[t.ID] = t
		scorings = append(scorings, s.scorePhaseDM(ag, t, unblockCounts[t.ID]))
	}

	oracleUsed := false
	if ora != nil {
		oracleUsed = true
		for i := range scorings {
			t := byID[scorings[i].TaskID]
			result, err := ora.ScoreTaskForAgent(ctx, oracle.AgentProfile{
				AgentID:          ag.ID,
				Skills:           ag.Skills,
				PerformanceScore: ag.PerformanceScore,
				Completed:        ag.Counters.Completed,
				Failed:           ag.Counters.Failed,
			}, oracle.TaskSummary{TaskID: t.ID, Name: t.Name, Description: t.Description, Labels: t.Labels})
			if err != nil {
				scorings[i].SuccessProbability = 0.5
				scorings[i].Risk = 0.5
				continue
			}
			scorings[i].SuccessProbability = result.SuccessProbability
			scorings[i].Risk = result.Risk
		}
	}

	for i := range scorings {
		scorings[i].OracleUsed = oracleUsed
		if oracleUsed {
			scorings[i].Score = 0.15*scorings[i].SkillMatch + 0.15*scorings[i].PriorityScore +
				0.25*scorings[i].DependencyScore + 0.30*scorings[i].SuccessProbability + 0.15*(1-scorings[i].Risk)
		} else {
			scorings[i].Score = 0.30*scorings[i].SkillMatch + 0.30*scorings[i].PriorityScore + 0.40*scorings[i].DependencyScore
		}
	}

	chosenIdx := pickBest(scorings, byID)
	explanation := Explanation{Considered: scorings, DroppedSafety: dropped}
	if chosenIdx < 0 {
		return nil, explanation
	}
	chosen := scorings[chosenIdx]
	explanation.Chosen = &chosen
	result := byID[chosen.TaskID]
	return &result, explanation
}

// safetyFilter implements Phase S (§4.5).
func (s *Service) safetyFilter(candidates []task.Task, inFlight map[string]bool, leased LeaseChecker) (survivors []task.Task, dropped []string) {
	allTasks := s.graph.AllTasks()
	byID := make(map[string]task.Task, len(allTasks))
	for _, t := range allTasks {
		// Add the graph's resolved and inferred edges to the task's own list.
		t.Dependencies = append(append([]string(nil), t.Dependencies...), s.graph.DependenciesOf(t.ID)...)
		byID[t.ID] = t
	}

	for _, t := range candidates {
		check := t
		if g, ok := byID[t.ID]; ok {
			check.Dependencies = g.Dependencies
		}
		if hasUnmetDependency(check, byID) {
			dropped = append(dropped, t.ID)
			continue
		}
		if blockedByImplementation(check, byID) {
			dropped = append(dropped, t.ID)
			continue
		}
		if inFlight != nil && inFlight[t.ID] {
			dropped = append(dropped, t.ID)
			continue
		}
		if leased != nil && leased(t.ID) {
			dropped = append(dropped, t.ID)
			continue
		}
		survivors = append(survivors, t)
	}
	return survivors, dropped
}

// hasUnmetDependency reads the dependency id list straight off the task;
// safetyFilter has already added the graph's resolved and inferred edges to
// that list, so no separate graph call is needed here.
func hasUnmetDependency(t task.Task, byID map[string]task.Task) bool {
	for _, depID := range t.Dependencies {
		if dep, ok := byID[depID]; ok && dep.Status != task.StatusDone {
			return true
		}
	}
	return false
}

// blockedByImplementation implements Phase S(b): a deployment/testing task
// is unsafe while any transitive implementation-class dependency is not
// DONE.
func blockedByImplementation(t task.Task, byID map[string]task.Task) bool {
	class := t.Class()
	if class != task.ClassDeployment && class != task.ClassTesting {
		return false
	}
	visited := map[string]bool{}
	var stack []string
	stack = append(stack, t.Dependencies...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		dep, ok := byID[id]
		if !ok {
			continue
		}
		if dep.Class() == task.ClassImplementation && dep.Status != task.StatusDone {
			return true
		}
		stack = append(stack, dep.Dependencies...)
	}
	return false
}

// unblockCounts implements Phase D's unblock_count over the survivor set.
func (s *Service) unblockCounts(survivors []task.Task) map[string]int {
	allTasks := s.graph.AllTasks()
	counts := make(map[string]int, len(survivors))
	survivorSet := make(map[string]bool, len(survivors))
	for _, t := range survivors {
		survivorSet[t.ID] = true
	}

	for _, candidate := range survivors {
		for _, t := range allTasks {
			remaining := 0
			isBlocker := false
			for _, dep := range t.Dependencies {
				depTask, ok := findTask(allTasks, dep)
				if !ok || depTask.Status == task.StatusDone {
					continue
				}
				remaining++
				if dep == candidate.ID {
					isBlocker = true
				}
			}
			if isBlocker && remaining == 1 {
				counts[candidate.ID]++
			}
		}
	}
	return counts
}

func findTask(all []task.Task, id string) (task.Task, bool) {
	for _, t := range all {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

func (s *Service) scorePhaseDM(ag agent.Agent, t task.Task, unblockCount int) Scoring {
	skillMatch := 0.0
	if len(t.Labels) > 0 {
		skillMatch = float64(ag.SkillOverlap(t.Labels)) / float64(max1(len(t.Labels)))
	}
	sD := float64(unblockCount) / 5.0
	if sD > 1.0 {
		sD = 1.0
	}
	return Scoring{
		TaskID:          t.ID,
		SkillMatch:      skillMatch,
		PriorityScore:   t.Priority.Score(),
		DependencyScore: sD,
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// pickBest applies the combination scoring's tiebreaks: higher score, then
// higher priority, then older created_at, then lexicographic task_id.
func pickBest(scorings []Scoring, byID map[string]task.Task) int {
	best := -1
	for i, sc := range scorings {
		if best < 0 {
			best = i
			continue
		}
		if better(sc, scorings[best], byID) {
			best = i
		}
	}
	return best
}

func better(a, b Scoring, byID map[string]task.Task) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	ta, tb := byID[a.TaskID], byID[b.TaskID]
	if ta.Priority.Score() != tb.Priority.Score() {
		return ta.Priority.Score() > tb.Priority.Score()
	}
	if !ta.CreatedAt.Equal(tb.CreatedAt) {
		return ta.CreatedAt.Before(tb.CreatedAt)
	}
	return ta.ID < tb.ID
}
