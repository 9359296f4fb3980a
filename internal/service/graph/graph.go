// Package graph wraps the domain Task Graph (C1) with the
// single-writer/multi-reader lock described in §5: inference and ingest
// take the writer lock, every other reader uses RLock.
package graph

import (
	"sync"

	domaingraph "github.com/marcus-ai/marcus/internal/domain/graph"
	"github.com/marcus-ai/marcus/internal/domain/task"
)

type Service struct {
	mu sync.RWMutex
	g  *domaingraph.Graph
}

func New() *Service {
	return &Service{g: domaingraph.New()}
}

// Refresh replaces the graph contents from a fresh Board snapshot,
// returning any dependency ids that could not be resolved (dropped per
// §4.1). Takes the writer lock.
func (s *Service) Refresh(tasks []task.Task) (dropped map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped = make(map[string][]string)
	fresh := domaingraph.New()
	// Register every node and symbolic id first, so a dependency on a task
	// that comes later in the snapshot still resolves.
	for _, t := range tasks {
		node := t
		node.Dependencies = nil
		fresh.Upsert(node)
	}
	for _, t := range tasks {
		if d := fresh.Upsert(t); len(d) > 0 {
			dropped[t.ID] = d
		}
	}
	s.g = fresh
	return dropped
}

func (s *Service) Upsert(t task.Task) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Upsert(t)
}

func (s *Service) AddEdge(dependency, dependent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g.AddEdge(dependency, dependent)
}

func (s *Service) RemoveEdge(dependency, dependent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g.RemoveEdge(dependency, dependent)
}

func (s *Service) Get(id string) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.Get(id)
}

func (s *Service) DependenciesOf(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.DependenciesOf(id)
}

func (s *Service) DependentsOf(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.DependentsOf(id)
}

func (s *Service) HasCycle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.HasCycle()
}

func (s *Service) TopologicalOrder() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.TopologicalOrder()
}

func (s *Service) CriticalPath() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.CriticalPath()
}

func (s *Service) IsOnCriticalPath(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.IsOnCriticalPath(id)
}

func (s *Service) AllTasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.AllTasks()
}
