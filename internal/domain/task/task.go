// Package task defines the Task entity that the Assignment Coordination
// Core operates on. Tasks are never created here: they are read from the
// Board and annotated with status transitions driven by agent activity.
package task

import (
	"strings"
	"time"
)

type Status string

const (
	StatusTODO       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusBlocked    Status = "BLOCKED"
	StatusDone       Status = "DONE"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// priorityScore maps a priority to the [0,1] score used by the Matcher (§4.5).
var priorityScore = map[Priority]float64{
	PriorityLow:      0.25,
	PriorityMedium:   0.5,
	PriorityHigh:     0.75,
	PriorityCritical: 1.0,
}

func (p Priority) Score() float64 {
	if s, ok := priorityScore[p]; ok {
		return s
	}
	return 0.5
}

// Class is the keyword-derived classification of a task used by the
// dependency patterns and the safety predicate.
type Class string

const (
	ClassDesign         Class = "design"
	ClassImplementation Class = "implementation"
	ClassTesting        Class = "testing"
	ClassDeployment     Class = "deployment"
	ClassOther          Class = "other"
)

// classOrder gives the ordering used by the logical predicate in the
// Dependency Inferer: design < implementation < testing < deployment,
// with "other" sitting between implementation and testing.
var classOrder = map[Class]float64{
	ClassDesign:         1,
	ClassImplementation: 2,
	ClassOther:          2.5,
	ClassTesting:        3,
	ClassDeployment:     4,
}

func (c Class) Order() float64 { return classOrder[c] }

var classKeywords = map[Class][]string{
	ClassDesign:         {"design", "plan", "architect", "wireframe", "spec", "research", "analyze"},
	ClassTesting:        {"test", "qa", "quality", "verify", "validation", "check"},
	ClassDeployment:     {"deploy", "release", "launch", "production", "publish"},
	ClassImplementation: {"implement", "build", "create", "develop", "code", "write"},
}

// classifyOrder is the order in which classes are checked when a name could
// match more than one keyword set; it mirrors the §4.1 priority list.
var classifyOrder = []Class{ClassDesign, ClassImplementation, ClassTesting, ClassDeployment}

// Classify returns the keyword-derived class of a task name, case-insensitive.
func Classify(name string) Class {
	lower := strings.ToLower(name)
	for _, class := range classifyOrder {
		for _, kw := range classKeywords[class] {
			if strings.Contains(lower, kw) {
				return class
			}
		}
	}
	return ClassOther
}

// Task is the Board's view of a unit of work, as the core sees it.
type Task struct {
	ID             string     `json:"task_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	Dependencies   []string   `json:"dependencies"`
	Labels         []string   `json:"labels"`
	EstimatedHours float64    `json:"estimated_hours"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// OriginalID extracts the `Original ID: <sym>` line from the description, if
// present, per §4.1's id-resolution rule. Returns "" when absent.
func (t Task) OriginalID() string {
	const marker = "Original ID:"
	for _, line := range strings.Split(t.Description, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
	}
	return ""
}

func (t Task) Class() Class { return Classify(t.Name) }

// HasLabel reports whether the task carries the given label, case-insensitive.
func (t Task) HasLabel(label string) bool {
	for _, l := range t.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}
