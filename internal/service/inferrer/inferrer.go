// Package inferrer implements the Dependency Inferer (C2): hybrid pattern +
// Oracle inference producing a validated, acyclic dependency edge set.
package inferrer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/marcus-ai/marcus/internal/domain/dependency"
	"github.com/marcus-ai/marcus/internal/domain/errs"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/ledgerstore"
	"github.com/marcus-ai/marcus/internal/port/oracle"
)

type Service struct {
	cfg    Config
	oracle oracle.Oracle // may be nil
	cache  *cache
	log    *slog.Logger
}

func New(cfg Config, ora oracle.Oracle, store ledgerstore.Store, log *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		oracle: ora,
		cache:  newCache(store, cfg.CacheTTL),
		log:    log,
	}
}

// Result is the outcome of one Infer call: the validated, acyclic edge set
// plus diagnostics for the caller to publish as events.
type Result struct {
	Edges    []dependency.Edge
	Warnings []string
	Fatal    error // non-nil only for an all-mandatory cycle (§4.2.5)
}

// Infer runs the five-step algorithm of §4.2 over the given task set.
func (s *Service) Infer(ctx context.Context, tasks []task.Task) Result {
	byID := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	patternEdges, ambiguous := s.patternPass(tasks)

	oracleEdges, warnings := s.oraclePass(ctx, tasks, ambiguous)

	merged := s.merge(patternEdges, oracleEdges)

	edges, brokenWarnings, fatal := breakCycles(tasks, merged)
	warnings = append(warnings, brokenWarnings...)

	return Result{Edges: edges, Warnings: warnings, Fatal: fatal}
}

// patternPass implements §4.2.1: for every ordered pair, test each fixed
// pattern and validate with the logical predicate.
func (s *Service) patternPass(tasks []task.Task) (edges []dependency.Edge, ambiguousPairs []oracle.PairQuery) {
	seen := make(map[[2]string]bool)

	for _, a := range tasks {
		for _, b := range tasks {
			if a.ID == b.ID {
				continue
			}
			for _, p := range patterns {
				if !p.matchDependency(a) || !p.matchDependent(b) {
					continue
				}
				if p.componentScoped && sharedTokenCount(a.Name, b.Name) == 0 {
					continue
				}
				if !logicalPredicateHolds(a, b) {
					continue
				}
				edges = append(edges, dependency.Edge{
					DependencyTaskID: a.ID,
					DependentTaskID:  b.ID,
					Confidence:       p.confidence,
					Mandatory:        p.mandatory,
					Origin:           dependency.OriginPattern,
					Reasoning:        fmt.Sprintf("pattern:%s", p.name),
				})
			}

			key := [2]string{a.ID, b.ID}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if seen[key] {
				continue
			}
			// Ambiguity selection runs over every pair regardless of
			// whether a pattern already matched it, per §4.2.2: "no high
			// confidence pattern hit (confidence < 0.9)".
			if isAmbiguous(a, b, edges) {
				seen[key] = true
				ambiguousPairs = append(ambiguousPairs, oracle.PairQuery{
					TaskAID: a.ID, TaskAName: a.Name,
					TaskBID: b.ID, TaskBName: b.Name,
				})
			}
		}
	}
	return edges, ambiguousPairs
}

// logicalPredicateHolds implements §4.2.1(a,b). a is the candidate
// dependency, b the candidate dependent.
func logicalPredicateHolds(a, b task.Task) bool {
	if !(a.Class().Order() < b.Class().Order()) {
		return false
	}
	// An already-DONE task cannot be recorded as depending on a task that
	// is not yet DONE — that would assert an impossible history.
	if b.Status == task.StatusDone && a.Status != task.StatusDone {
		return false
	}
	return true
}

// isAmbiguous implements §4.2.2: no existing high-confidence (>=0.9) edge
// for this pair, and (shares >=2 non-stopwords OR shares a tech keyword).
func isAmbiguous(a, b task.Task, existing []dependency.Edge) bool {
	for _, e := range existing {
		if (e.DependencyTaskID == a.ID && e.DependentTaskID == b.ID) ||
			(e.DependencyTaskID == b.ID && e.DependentTaskID == a.ID) {
			if e.Confidence >= 0.9 {
				return false
			}
		}
	}
	return sharedTokenCount(a.Name, b.Name) >= 2 || sharesTechKeyword(a, b)
}

// oraclePass implements §4.2.3/§4.2.6: batch ambiguous pairs, consult the
// cache, fall back to pattern-only (no edges) on any Oracle failure.
func (s *Service) oraclePass(ctx context.Context, tasks []task.Task, pairs []oracle.PairQuery) ([]dependency.Edge, []string) {
	if s.cfg.OracleDisabled() || s.oracle == nil || len(pairs) == 0 {
		return nil, nil
	}

	key := cacheKey(tasks, pairs)
	if cached, fresh, found := s.cache.get(ctx, key); found && fresh {
		return toEdges(cached), nil
	}

	var edges []dependency.Edge
	var warnings []string
	batchSize := s.cfg.MaxAIPairsPerBatch
	if batchSize <= 0 {
		batchSize = 20
	}

	var allResults []oracle.PairResult
	for start := 0; start < len(pairs); start += batchSize {
		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		results, err := s.oracle.InferPairs(ctx, pairs[start:end])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("oracle pass failed: %v", err))
			if s.log != nil {
				s.log.WarnContext(ctx, "oracle inference failed, degrading to pattern-only", "error", err)
			}
			if cached, _, found := s.cache.get(ctx, key); found {
				return toEdges(cached), append(warnings, "served stale dependency cache")
			}
			return nil, append(warnings, errs.ErrOracleUnavailable.Error())
		}
		allResults = append(allResults, results...)
	}

	for _, r := range allResults {
		if r.Confidence < s.cfg.AIConfidenceThreshold {
			continue
		}
		dep, dependent := directedPair(r)
		if dep == "" {
			continue
		}
		edges = append(edges, dependency.Edge{
			DependencyTaskID: dep,
			DependentTaskID:  dependent,
			Confidence:       r.Confidence,
			Mandatory:        false,
			Origin:           dependency.OriginOracle,
			Reasoning:        r.Reasoning,
		})
	}

	if err := s.cache.put(ctx, key, allResults); err != nil && s.log != nil {
		s.log.WarnContext(ctx, "failed to persist dependency cache", "error", err)
	}

	return edges, warnings
}

func directedPair(r oracle.PairResult) (depID, dependentID string) {
	switch r.Direction {
	case oracle.DirectionAToB:
		return r.TaskAID, r.TaskBID
	case oracle.DirectionBToA:
		return r.TaskBID, r.TaskAID
	default:
		return "", ""
	}
}

func toEdges(results []oracle.PairResult) []dependency.Edge {
	var edges []dependency.Edge
	for _, r := range results {
		dep, dependent := directedPair(r)
		if dep == "" {
			continue
		}
		edges = append(edges, dependency.Edge{
			DependencyTaskID: dep,
			DependentTaskID:  dependent,
			Confidence:       r.Confidence,
			Origin:           dependency.OriginOracle,
			Reasoning:        r.Reasoning,
		})
	}
	return edges
}

// merge implements §4.2.4 over the union of pattern and oracle edges.
func (s *Service) merge(a, b []dependency.Edge) []dependency.Edge {
	byPair := make(map[[2]string]dependency.Edge)
	order := make([][2]string, 0, len(a)+len(b))

	add := func(e dependency.Edge) {
		key := [2]string{e.DependencyTaskID, e.DependentTaskID}
		if existing, ok := byPair[key]; ok {
			byPair[key] = dependency.Merge(existing, e, s.cfg.CombinedConfidenceBoost)
			return
		}
		byPair[key] = e
		order = append(order, key)
	}
	for _, e := range a {
		add(e)
	}
	for _, e := range b {
		add(e)
	}

	out := make([]dependency.Edge, 0, len(order))
	for _, key := range order {
		out = append(out, byPair[key])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DependencyTaskID != out[j].DependencyTaskID {
			return out[i].DependencyTaskID < out[j].DependencyTaskID
		}
		return out[i].DependentTaskID < out[j].DependentTaskID
	})
	return out
}
