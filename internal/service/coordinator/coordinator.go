// Package coordinator implements the central request_next_task data flow
// and the rest of the agent-facing tool surface (C8's operations), tying
// together the Graph, Ledger, Lease Manager, Matcher and Context Builder
// under the Global Assignment Mutex described in §5.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	domainagent "github.com/marcus-ai/marcus/internal/domain/agent"
	"github.com/marcus-ai/marcus/internal/domain/assignment"
	"github.com/marcus-ai/marcus/internal/domain/errs"
	"github.com/marcus-ai/marcus/internal/domain/event"
	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/board"
	"github.com/marcus-ai/marcus/internal/port/eventbus"
	"github.com/marcus-ai/marcus/internal/port/oracle"
	"github.com/marcus-ai/marcus/internal/service/contextbuilder"
	"github.com/marcus-ai/marcus/internal/service/graph"
	"github.com/marcus-ai/marcus/internal/service/inferrer"
	"github.com/marcus-ai/marcus/internal/service/ledger"
	"github.com/marcus-ai/marcus/internal/service/lease"
	"github.com/marcus-ai/marcus/internal/service/matcher"
)

type Config struct {
	BoardTimeout  time.Duration
	OracleTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{BoardTimeout: 10 * time.Second, OracleTimeout: 30 * time.Second}
}

type Service struct {
	cfg Config

	board    board.Board
	oracle   oracle.Oracle // may be nil
	graph    *graph.Service
	ledger   *ledger.Service
	lease    *lease.Manager
	matcher  *matcher.Service
	inferrer *inferrer.Service
	bus      eventbus.EventBus
	log      *slog.Logger

	agentsMu sync.RWMutex
	agents   map[string]*domainagent.Agent

	inFlightMu sync.Mutex
	inFlight   map[string]bool
}

func New(cfg Config, b board.Board, ora oracle.Oracle, g *graph.Service, l *ledger.Service, lm *lease.Manager, m *matcher.Service, inf *inferrer.Service, bus eventbus.EventBus, log *slog.Logger) *Service {
	return &Service{
		cfg: cfg, board: b, oracle: ora, graph: g, ledger: l, lease: lm, matcher: m, inferrer: inf, bus: bus, log: log,
		agents:   make(map[string]*domainagent.Agent),
		inFlight: make(map[string]bool),
	}
}

// RegisterAgent implements the `register_agent` tool.
func (s *Service) RegisterAgent(agentID, name, role string, skills []string) (capacity int, err error) {
	if agentID == "" || name == "" {
		return 0, fmt.Errorf("%w: agent_id and name are required", errs.ErrInvalidInput)
	}
	a := domainagent.New(agentID, name, role, skills)

	s.agentsMu.Lock()
	s.agents[agentID] = &a
	s.agentsMu.Unlock()
	return a.Capacity, nil
}

func (s *Service) getAgent(agentID string) (*domainagent.Agent, bool) {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()
	a, ok := s.agents[agentID]
	return a, ok
}

// NextTaskResult is the `request_next_task` output (§6.3).
type NextTaskResult struct {
	Task         *task.Task
	Instructions *contextbuilder.Payload
	ReasonIfNone string
}

// RequestNextTask implements the central data flow of §2: ledger lookup,
// Board fetch, Matcher, lease acquire under the global mutex, Board update,
// ledger persist, Context Builder.
func (s *Service) RequestNextTask(ctx context.Context, agentID string) (NextTaskResult, error) {
	ag, ok := s.getAgent(agentID)
	if !ok {
		return NextTaskResult{}, errs.ErrNotRegistered
	}

	if existing := s.ledger.ByAgent(agentID); len(existing) > 0 {
		for _, a := range existing {
			if t, found := s.graph.Get(a.TaskID); found {
				payload := s.buildContext(ctx, *ag, t)
				return NextTaskResult{Task: &t, Instructions: &payload}, nil
			}
		}
	}

	boardCtx, cancel := context.WithTimeout(ctx, s.cfg.BoardTimeout)
	tasks, err := s.board.ListTasks(boardCtx)
	cancel()
	if err != nil {
		return NextTaskResult{}, fmt.Errorf("%w: %v", errs.ErrBoardUnavailable, err)
	}
	s.graph.Refresh(tasks)
	s.applyInference(ctx, tasks)

	candidates := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == task.StatusTODO {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return NextTaskResult{ReasonIfNone: "all_blocked"}, nil
	}

	// Oracle scoring happens during Matcher scoring, before the critical
	// section, per §5's ordering guarantee.
	s.lease.LockAssignment()
	defer s.lease.UnlockAssignment()

	s.inFlightMu.Lock()
	inFlightSnapshot := make(map[string]bool, len(s.inFlight))
	for k, v := range s.inFlight {
		inFlightSnapshot[k] = v
	}
	s.inFlightMu.Unlock()

	chosen, explanation := s.matcher.Match(ctx, *ag, candidates, inFlightSnapshot, s.hasActiveLease, s.oracle)
	if chosen == nil {
		return NextTaskResult{ReasonIfNone: "no_match"}, nil
	}

	s.markInFlight(chosen.ID, true)
	defer s.markInFlight(chosen.ID, false)

	now := time.Now().UTC()
	l := s.lease.Acquire(chosen.ID, agentID, now)
	if l == nil {
		return NextTaskResult{ReasonIfNone: "no_match"}, nil
	}

	updateCtx, cancel := context.WithTimeout(ctx, s.cfg.BoardTimeout)
	assignedTo := agentID
	inProgress := task.StatusInProgress
	err = s.board.UpdateTask(updateCtx, chosen.ID, board.Patch{Status: &inProgress, AssignedTo: &assignedTo})
	cancel()
	if err != nil {
		_ = s.lease.Release(ctx, chosen.ID, agentID)
		return NextTaskResult{}, fmt.Errorf("%w: %v", errs.ErrBoardUnavailable, err)
	}

	rec := assignment.Assignment{
		AgentID:        agentID,
		TaskID:         chosen.ID,
		AssignedAt:     now,
		LeaseExpiresAt: l.ExpiresAt,
		LastHeartbeat:  now,
		Status:         assignment.StatusActive,
	}
	if err := s.ledger.Save(ctx, rec); err != nil {
		rollbackCtx, cancel := context.WithTimeout(context.Background(), s.cfg.BoardTimeout)
		rolledBackStatus := task.StatusTODO
		_ = s.board.UpdateTask(rollbackCtx, chosen.ID, board.Patch{Status: &rolledBackStatus, AssignedTo: new(string)})
		cancel()
		_ = s.lease.Release(ctx, chosen.ID, agentID)
		return NextTaskResult{}, fmt.Errorf("%w: %v", errs.ErrLedgerWrite, err)
	}

	s.publish(ctx, event.TypeAssignmentAcquired, chosen.ID, map[string]string{"agent_id": agentID})
	s.publish(ctx, event.TypeTaskStarted, chosen.ID, map[string]string{"agent_id": agentID})

	payload := s.buildContext(ctx, *ag, *chosen)
	_ = explanation
	return NextTaskResult{Task: chosen, Instructions: &payload}, nil
}

// applyInference runs the Dependency Inferer over the current Board
// snapshot and installs its edges into the Task Graph, publishing one
// DEPENDENCY_INFERRED event per edge so a Board/monitoring client can
// observe what was inferred. A nil inferrer (e.g. during tests that
// construct the graph directly) is a no-op.
func (s *Service) applyInference(ctx context.Context, tasks []task.Task) {
	if s.inferrer == nil {
		return
	}
	result := s.inferrer.Infer(ctx, tasks)
	if result.Fatal != nil {
		if s.log != nil {
			s.log.ErrorContext(ctx, "dependency inference reported an unbreakable mandatory cycle", "error", result.Fatal)
		}
		return
	}
	for _, w := range result.Warnings {
		if s.log != nil {
			s.log.WarnContext(ctx, "dependency inference warning", "warning", w)
		}
	}
	for _, e := range result.Edges {
		s.graph.AddEdge(e.DependencyTaskID, e.DependentTaskID)
		s.publish(ctx, event.TypeDependencyInferred, e.DependentTaskID, map[string]string{
			"dependency_task_id": e.DependencyTaskID,
			"origin":              string(e.Origin),
			"confidence":          fmt.Sprintf("%.2f", e.Confidence),
		})
	}
}

func (s *Service) hasActiveLease(taskID string) bool {
	l, ok := s.lease.Get(taskID)
	return ok && l.Status == "ACTIVE"
}

func (s *Service) markInFlight(taskID string, v bool) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if v {
		s.inFlight[taskID] = true
	} else {
		delete(s.inFlight, taskID)
	}
}

func (s *Service) buildContext(ctx context.Context, ag domainagent.Agent, t task.Task) contextbuilder.Payload {
	historyCtx, cancel := context.WithTimeout(ctx, s.cfg.BoardTimeout)
	history, _ := s.board.GetImplementationHistory(historyCtx, t.ID)
	cancel()

	var preds *contextbuilder.Predictions
	if s.oracle != nil {
		oracleCtx, cancel := context.WithTimeout(ctx, s.cfg.OracleTimeout)
		score, err := s.oracle.ScoreTaskForAgent(oracleCtx, oracle.AgentProfile{
			AgentID: ag.ID, Skills: ag.Skills, PerformanceScore: ag.PerformanceScore,
			Completed: ag.Counters.Completed, Failed: ag.Counters.Failed,
		}, oracle.TaskSummary{TaskID: t.ID, Name: t.Name, Description: t.Description, Labels: t.Labels})
		cancel()
		if err == nil {
			preds = &contextbuilder.Predictions{
				SuccessProbability: score.SuccessProbability,
				ExpectedHours:      score.ExpectedHours,
				Risk:               score.Risk,
			}
		}
	}

	return contextbuilder.Build(ag, t, s.graph, history, preds)
}

// ReportTaskProgress implements `report_task_progress`.
func (s *Service) ReportTaskProgress(ctx context.Context, agentID, taskID string, status string, progress int, message string) error {
	a, ok := s.ledger.ByTask(taskID)
	if !ok || a.AgentID != agentID {
		return errs.ErrNotAssigned
	}
	l, ok := s.lease.Get(taskID)
	if !ok || l.IsExpired(time.Now().UTC()) {
		return errs.ErrLeaseExpired
	}

	ok2, err := s.lease.Heartbeat(ctx, taskID, agentID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok2 {
		return errs.ErrLeaseExpired
	}

	detail := map[string]string{"agent_id": agentID, "progress": fmt.Sprint(progress)}
	if message != "" {
		detail["message"] = message
	}

	switch status {
	case "completed":
		s.publish(ctx, event.TypeTaskCompleted, taskID, detail)
		return s.completeTask(ctx, agentID, taskID)
	case "blocked":
		s.publish(ctx, event.TypeTaskBlocked, taskID, detail)
	default:
		s.publish(ctx, event.TypeTaskProgress, taskID, detail)
	}
	return nil
}

// ReportBlocker implements `report_blocker`.
func (s *Service) ReportBlocker(ctx context.Context, agentID, taskID, description, severity string) error {
	a, ok := s.ledger.ByTask(taskID)
	if !ok || a.AgentID != agentID {
		return errs.ErrNotAssigned
	}
	s.publish(ctx, event.TypeTaskBlocked, taskID, map[string]string{
		"agent_id": agentID, "description": description, "severity": severity,
	})
	return nil
}

// GetTaskContext implements `get_task_context`.
func (s *Service) GetTaskContext(ctx context.Context, taskID string) (contextbuilder.Payload, error) {
	t, ok := s.graph.Get(taskID)
	if !ok {
		return contextbuilder.Payload{}, errs.ErrUnknownTask
	}
	agentID := t.AssignedTo
	var ag domainagent.Agent
	if a, found := s.getAgent(agentID); found {
		ag = *a
	}
	return s.buildContext(ctx, ag, t), nil
}

// Release implements `release_task`, idempotently (§8).
func (s *Service) Release(ctx context.Context, agentID, taskID string) error {
	if err := s.lease.Release(ctx, taskID, agentID); err != nil {
		return err
	}
	_ = s.ledger.Remove(ctx, taskID)

	clearedStatus := task.StatusTODO
	updateCtx, cancel := context.WithTimeout(ctx, s.cfg.BoardTimeout)
	_ = s.board.UpdateTask(updateCtx, taskID, board.Patch{Status: &clearedStatus, AssignedTo: new(string)})
	cancel()
	return nil
}

// completeTask implements the terminal branch of report_task_progress when
// status is "completed": same lease/ledger teardown as a voluntary release,
// but the Board moves to StatusDone rather than back to StatusTODO, and
// AssignedTo is left pointing at the agent that finished the work instead of
// being cleared.
func (s *Service) completeTask(ctx context.Context, agentID, taskID string) error {
	if err := s.lease.Release(ctx, taskID, agentID); err != nil {
		return err
	}
	_ = s.ledger.Remove(ctx, taskID)

	doneStatus := task.StatusDone
	updateCtx, cancel := context.WithTimeout(ctx, s.cfg.BoardTimeout)
	_ = s.board.UpdateTask(updateCtx, taskID, board.Patch{Status: &doneStatus})
	cancel()
	return nil
}

// PingLevel is the health report detail level requested by `ping`.
type PingLevel string

const (
	PingBasic      PingLevel = "basic"
	PingStandard   PingLevel = "standard"
	PingDetailed   PingLevel = "detailed"
	PingDiagnostic PingLevel = "diagnostic"
)

type HealthReport struct {
	OK              bool     `json:"ok"`
	RegisteredAgents int     `json:"registered_agents,omitempty"`
	ActiveAssignments int    `json:"active_assignments,omitempty"`
	TasksInGraph    int      `json:"tasks_in_graph,omitempty"`
	Diagnostics     []string `json:"diagnostics,omitempty"`
}

// Ping implements the `ping` tool.
func (s *Service) Ping(level PingLevel) HealthReport {
	report := HealthReport{OK: true}
	if level == PingBasic {
		return report
	}
	s.agentsMu.RLock()
	report.RegisteredAgents = len(s.agents)
	s.agentsMu.RUnlock()
	report.ActiveAssignments = s.ledger.Count()
	if level == PingStandard {
		return report
	}
	report.TasksInGraph = len(s.graph.AllTasks())
	if level == PingDiagnostic {
		report.Diagnostics = s.diagnostics()
	}
	return report
}

func (s *Service) diagnostics() []string {
	var out []string
	if s.graph.HasCycle() {
		out = append(out, "task graph currently reports a cycle")
	}
	s.inFlightMu.Lock()
	inFlight := len(s.inFlight)
	s.inFlightMu.Unlock()
	if inFlight > 0 {
		out = append(out, fmt.Sprintf("%d task(s) currently being offered under the assignment mutex", inFlight))
	}
	sort.Strings(out)
	return out
}

func (s *Service) publish(ctx context.Context, t event.Type, entityID string, detail map[string]string) {
	if s.bus == nil {
		return
	}
	_ = s.bus.Publish(ctx, event.New(t, entityID, detail))
}
