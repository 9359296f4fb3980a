// Package graph implements the Task Graph (C1): an in-memory directed graph
// of tasks keyed by task id, with cycle detection, topological ordering and
// critical-path computation. The type here is a plain, non-concurrent data
// structure; internal/service/graph adds the single-writer/multi-reader
// lock described in §5.
package graph

import (
	"fmt"
	"sort"

	"github.com/marcus-ai/marcus/internal/domain/task"
)

// Graph is a directed graph of tasks: an edge from A to B means "B depends
// on A" (A must be DONE before B is eligible).
type Graph struct {
	nodes map[string]task.Task
	// deps[b] is the set of task ids that b depends on.
	deps map[string]map[string]struct{}
	// dependents[a] is the set of task ids that depend on a.
	dependents map[string]map[string]struct{}
	// symbols maps a symbolic id (from "Original ID: <sym>") to the real id.
	symbols map[string]string
}

func New() *Graph {
	return &Graph{
		nodes:      make(map[string]task.Task),
		deps:       make(map[string]map[string]struct{}),
		dependents: make(map[string]map[string]struct{}),
		symbols:    make(map[string]string),
	}
}

// Upsert inserts or replaces a task and (re-)resolves its dependency edges
// and symbolic id, per §4.1's id-resolution rule. Dependencies that cannot
// be resolved to a known id or symbol are dropped silently (the caller may
// inspect the return value to warn).
func (g *Graph) Upsert(t task.Task) (dropped []string) {
	g.nodes[t.ID] = t
	if sym := t.OriginalID(); sym != "" {
		g.symbols[sym] = t.ID
	}

	g.clearDeps(t.ID)
	resolved := make(map[string]struct{}, len(t.Dependencies))
	for _, raw := range t.Dependencies {
		id := raw
		if _, ok := g.nodes[id]; !ok {
			if sym, ok := g.symbols[id]; ok {
				id = sym
			} else {
				dropped = append(dropped, raw)
				continue
			}
		}
		resolved[id] = struct{}{}
		if g.dependents[id] == nil {
			g.dependents[id] = make(map[string]struct{})
		}
		g.dependents[id][t.ID] = struct{}{}
	}
	g.deps[t.ID] = resolved
	return dropped
}

func (g *Graph) clearDeps(id string) {
	for dep := range g.deps[id] {
		delete(g.dependents[dep], id)
	}
	delete(g.deps, id)
}

// Remove deletes a task and all edges touching it.
func (g *Graph) Remove(id string) {
	g.clearDeps(id)
	for dependent := range g.dependents[id] {
		delete(g.deps[dependent], id)
	}
	delete(g.dependents, id)
	delete(g.nodes, id)
}

func (g *Graph) Get(id string) (task.Task, bool) {
	t, ok := g.nodes[id]
	return t, ok
}

// AddEdge records "dependent depends on dependency" directly, bypassing
// Upsert's description-derived dependency list. Used by the Dependency
// Inferer to install validated edges.
func (g *Graph) AddEdge(dependency, dependent string) {
	if g.deps[dependent] == nil {
		g.deps[dependent] = make(map[string]struct{})
	}
	g.deps[dependent][dependency] = struct{}{}
	if g.dependents[dependency] == nil {
		g.dependents[dependency] = make(map[string]struct{})
	}
	g.dependents[dependency][dependent] = struct{}{}
}

// RemoveEdge removes a single dependency → dependent edge.
func (g *Graph) RemoveEdge(dependency, dependent string) {
	delete(g.deps[dependent], dependency)
	delete(g.dependents[dependency], dependent)
}

func toSortedSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) DependenciesOf(id string) []string { return toSortedSlice(g.deps[id]) }
func (g *Graph) DependentsOf(id string) []string   { return toSortedSlice(g.dependents[id]) }

// HasCycle runs a three-color DFS over the dependent edges.
func (g *Graph) HasCycle() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))
	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for next := range g.dependents[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}
	for id := range g.nodes {
		if color[id] == white {
			if visit(id) {
				return true
			}
		}
	}
	return false
}

// TopologicalOrder returns a deterministic topological ordering (dependency
// before dependent) via Kahn's algorithm. The graph must be acyclic;
// callers should run cycle-breaking first.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = len(g.deps[id])
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		next := toSortedSlice(g.dependents[id])
		for _, dependent := range next {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("graph: cannot compute topological order, cycle present")
	}
	return order, nil
}

// CriticalPath returns the longest path by estimated hours, expressed as an
// ordered list of task ids, dependency-first.
func (g *Graph) CriticalPath() []string {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil
	}

	best := make(map[string]float64, len(order))
	prev := make(map[string]string, len(order))
	for _, id := range order {
		hours := g.nodes[id].EstimatedHours
		best[id] = hours
		for _, dep := range g.DependenciesOf(id) {
			if cand := best[dep] + hours; cand > best[id] {
				best[id] = cand
				prev[id] = dep
			}
		}
	}

	var tail string
	var tailScore float64 = -1
	for id, score := range best {
		if score > tailScore {
			tailScore = score
			tail = id
		}
	}
	if tail == "" {
		return nil
	}

	var path []string
	for id := tail; id != ""; id = prev[id] {
		path = append([]string{id}, path...)
		if _, ok := prev[id]; !ok {
			break
		}
	}
	return path
}

// IsOnCriticalPath reports whether id appears on the critical path.
func (g *Graph) IsOnCriticalPath(id string) bool {
	for _, cp := range g.CriticalPath() {
		if cp == id {
			return true
		}
	}
	return false
}

// AllTasks returns every task currently in the graph, unordered.
func (g *Graph) AllTasks() []task.Task {
	out := make([]task.Task, 0, len(g.nodes))
	for _, t := range g.nodes {
		out = append(out, t)
	}
	return out
}
