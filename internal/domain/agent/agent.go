// Package agent defines the Agent entity: an external process registered
// with the core that repeatedly asks for work over the tool surface.
package agent

import (
	"strings"
	"time"
)

// Counters are the rolling outcome counters §3.1 attaches to an Agent.
type Counters struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Blocked   int `json:"blocked"`
}

// Agent is the core's view of a registered worker.
type Agent struct {
	ID               string    `json:"agent_id"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	Skills           []string  `json:"skills"`
	Capacity         int       `json:"capacity"`
	PerformanceScore float64   `json:"performance_score"`
	Counters         Counters  `json:"counters"`
	LastSeen         time.Time `json:"last_seen"`
}

const defaultCapacity = 1

// New registers a new agent with the defaults §3.1 prescribes: capacity 1
// and a neutral performance score.
func New(id, name, role string, skills []string) Agent {
	return Agent{
		ID:               id,
		Name:             name,
		Role:             role,
		Skills:           skills,
		Capacity:         defaultCapacity,
		PerformanceScore: 0.5,
		LastSeen:         time.Now().UTC(),
	}
}

func (a *Agent) RecordHeartbeat() { a.LastSeen = time.Now().UTC() }

func (a *Agent) IsStale(timeout time.Duration) bool {
	return time.Since(a.LastSeen) > timeout
}

func (a *Agent) HasSkill(skill string) bool {
	for _, s := range a.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

// SkillOverlap counts the skills shared with the given label set, used by
// the Matcher's skill-match score (§4.5 Phase M).
func (a *Agent) SkillOverlap(labels []string) int {
	n := 0
	for _, l := range labels {
		if a.HasSkill(l) {
			n++
		}
	}
	return n
}
