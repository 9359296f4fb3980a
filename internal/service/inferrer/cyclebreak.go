package inferrer

import (
	"fmt"

	"github.com/marcus-ai/marcus/internal/domain/dependency"
	"github.com/marcus-ai/marcus/internal/domain/errs"
	domaingraph "github.com/marcus-ai/marcus/internal/domain/graph"
	"github.com/marcus-ai/marcus/internal/domain/task"
)

// breakCycles implements §4.2.5: run DFS cycle detection, and for each
// cycle found drop the single lowest-confidence non-mandatory edge. A cycle
// made entirely of mandatory edges is fatal.
func breakCycles(tasks []task.Task, edges []dependency.Edge) (result []dependency.Edge, warnings []string, fatal error) {
	live := make([]dependency.Edge, len(edges))
	copy(live, edges)

	for {
		g := buildGraph(tasks, live)
		cycle := findCycleEdges(g, live)
		if cycle == nil {
			return live, warnings, nil
		}

		idx, ok := lowestConfidenceNonMandatory(live, cycle)
		if !ok {
			return nil, warnings, fmt.Errorf("%w: cycle of mandatory edges cannot be broken", errs.ErrCircularDependency)
		}
		dropped := live[idx]
		live = append(live[:idx], live[idx+1:]...)
		warnings = append(warnings, fmt.Sprintf(
			"dropped edge %s->%s (confidence %.2f) to break a dependency cycle",
			dropped.DependencyTaskID, dropped.DependentTaskID, dropped.Confidence))
	}
}

func buildGraph(tasks []task.Task, edges []dependency.Edge) *domaingraph.Graph {
	g := domaingraph.New()
	for _, t := range tasks {
		t.Dependencies = nil
		g.Upsert(t)
	}
	for _, e := range edges {
		g.AddEdge(e.DependencyTaskID, e.DependentTaskID)
	}
	return g
}

// findCycleEdges returns the edge-pairs participating in some cycle, or nil
// if the graph is acyclic.
func findCycleEdges(g *domaingraph.Graph, edges []dependency.Edge) [][2]string {
	if !g.HasCycle() {
		return nil
	}
	// Every edge whose endpoints are mutually reachable through the
	// dependent direction lies on some cycle.
	var cyclic [][2]string
	for _, e := range edges {
		if reachable(g, e.DependentTaskID, e.DependencyTaskID) {
			cyclic = append(cyclic, [2]string{e.DependencyTaskID, e.DependentTaskID})
		}
	}
	return cyclic
}

func reachable(g *domaingraph.Graph, from, to string) bool {
	visited := map[string]bool{}
	var stack []string
	stack = append(stack, from)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, g.DependentsOf(n)...)
	}
	return false
}

func lowestConfidenceNonMandatory(edges []dependency.Edge, cycle [][2]string) (int, bool) {
	inCycle := make(map[[2]string]bool, len(cycle))
	for _, c := range cycle {
		inCycle[c] = true
	}

	best := -1
	bestConfidence := 2.0
	for i, e := range edges {
		if e.Mandatory {
			continue
		}
		if !inCycle[[2]string{e.DependencyTaskID, e.DependentTaskID}] {
			continue
		}
		if e.Confidence < bestConfidence {
			bestConfidence = e.Confidence
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
