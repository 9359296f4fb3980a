// Package contextbuilder implements the Context Builder (C7): assembles
// the tiered instruction payload returned with each assignment. The
// builder is pure and deterministic — it never calls the Oracle itself;
// already-resolved predictions are passed in as input (§4.7, §5 ordering).
package contextbuilder

import (
	"sort"

	"github.com/marcus-ai/marcus/internal/domain/agent"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/board"
	"github.com/marcus-ai/marcus/internal/port/oracle"
)

// Graph is the subset of the Task Graph service the builder needs.
type Graph interface {
	DependentsOf(id string) []string
	IsOnCriticalPath(id string) bool
}

// Predictions carries already-resolved Oracle output (or nil if the Oracle
// was unavailable), keeping the builder itself Oracle-free.
type Predictions struct {
	SuccessProbability float64
	ExpectedHours      float64
	Risk               float64
	TopBlockers        []string
}

type Payload struct {
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	AcceptanceCriteria []string            `json:"acceptance_criteria"`
	PreviousImplementations []board.ImplementationEntry `json:"previous_implementations,omitempty"`
	Dependents         []string            `json:"dependents,omitempty"`
	InterfaceContract  string              `json:"interface_contract,omitempty"`
	DecisionLogging    bool                `json:"decision_logging_requested,omitempty"`
	Predictions        *Predictions        `json:"predictions,omitempty"`
	LabelGuidance      map[string]string   `json:"label_guidance,omitempty"`
}

var labelChecklists = map[string]string{
	"api":        "Document the request/response contract. Validate inputs. Return consistent error shapes.",
	"frontend":   "Check accessibility and loading/error states. Confirm responsive layout.",
	"database":   "Write a migration. Confirm indexes for new query patterns. Check for N+1 access.",
	"security":   "Validate all external input. Check authz on every new endpoint. No secrets in logs.",
	"deployment": "Confirm rollback path. Update the runbook. Verify health checks before promoting.",
}

var labelOrder = []string{"api", "frontend", "database", "security", "deployment"}

// Build assembles the payload for the given assignment, in the order of
// §4.7's six layers, each included only if its precondition holds.
func Build(ag agent.Agent, t task.Task, g Graph, history []board.ImplementationEntry, preds *Predictions) Payload {
	p := Payload{
		Name:               t.Name,
		Description:        t.Description,
		AcceptanceCriteria: acceptanceCriteria(t),
	}

	if len(history) > 0 {
		p.PreviousImplementations = history
	}

	dependents := g.DependentsOf(t.ID)
	if len(dependents) > 0 {
		p.Dependents = dependents
		p.InterfaceContract = interfaceContract(t)
	}

	if len(dependents) >= 3 || g.IsOnCriticalPath(t.ID) {
		p.DecisionLogging = true
	}

	if preds != nil {
		p.Predictions = preds
	}

	guidance := make(map[string]string)
	for _, label := range labelOrder {
		if t.HasLabel(label) {
			guidance[label] = labelChecklists[label]
		}
	}
	if len(guidance) > 0 {
		p.LabelGuidance = guidance
	}

	return p
}

func acceptanceCriteria(t task.Task) []string {
	if len(t.Labels) == 0 {
		return []string{"Complete the task as described and leave the system in a working state."}
	}
	labels := append([]string(nil), t.Labels...)
	sort.Strings(labels)
	criteria := make([]string, 0, len(labels))
	for _, l := range labels {
		criteria = append(criteria, "Satisfies the \""+l+"\" requirement implied by this task's labels.")
	}
	return criteria
}

func interfaceContract(t task.Task) string {
	return "Downstream tasks depend on this task's output; do not change its public shape without updating them."
}
