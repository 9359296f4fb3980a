package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/marcus-ai/marcus/internal/domain/errs"
	"github.com/marcus-ai/marcus/internal/service/coordinator"
)

// RegisterTools registers the seven tools of §6.3 on the server.
// [SRP] Tool registration only — server.go never changes when a tool is
// added, following the teacher's split between construction and tools.
func RegisterTools(s *mcpserver.MCPServer, coord *coordinator.Service, log *slog.Logger) {
	s.AddTool(mcpmcp.NewTool("register_agent",
		mcpmcp.WithDescription("Register this agent with the coordinator. Returns the agent's assignment capacity."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Caller-chosen opaque agent identifier")),
		mcpmcp.WithString("name", mcpmcp.Required(), mcpmcp.Description("Human-readable agent name")),
		mcpmcp.WithString("role", mcpmcp.Description("Agent role")),
		mcpmcp.WithArray("skills", mcpmcp.Description("Skill labels this agent can match against task labels")),
	), registerAgentHandler(coord))

	s.AddTool(mcpmcp.NewTool("request_next_task",
		mcpmcp.WithDescription("Request the next best task for this agent, or resume an existing in-flight assignment."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent identifier from register_agent")),
	), requestNextTaskHandler(coord))

	s.AddTool(mcpmcp.NewTool("report_task_progress",
		mcpmcp.WithDescription("Report progress on the currently assigned task, and heartbeat its lease."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent identifier")),
		mcpmcp.WithString("task_id", mcpmcp.Required(), mcpmcp.Description("Task identifier")),
		mcpmcp.WithString("status", mcpmcp.Required(), mcpmcp.Description("One of: in_progress, completed, blocked")),
		mcpmcp.WithNumber("progress", mcpmcp.Description("Percent complete, 0-100")),
		mcpmcp.WithString("message", mcpmcp.Description("Free-text progress note")),
	), reportTaskProgressHandler(coord))

	s.AddTool(mcpmcp.NewTool("report_blocker",
		mcpmcp.WithDescription("Report that the assigned task is blocked, without releasing it."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent identifier")),
		mcpmcp.WithString("task_id", mcpmcp.Required(), mcpmcp.Description("Task identifier")),
		mcpmcp.WithString("description", mcpmcp.Required(), mcpmcp.Description("What is blocking progress")),
		mcpmcp.WithString("severity", mcpmcp.Description("One of: low, medium, high")),
	), reportBlockerHandler(coord))

	s.AddTool(mcpmcp.NewTool("get_task_context",
		mcpmcp.WithDescription("Fetch the full generated instructions payload for a task."),
		mcpmcp.WithString("task_id", mcpmcp.Required(), mcpmcp.Description("Task identifier")),
	), getTaskContextHandler(coord))

	s.AddTool(mcpmcp.NewTool("ping",
		mcpmcp.WithDescription("Health check. Level controls how much detail is returned."),
		mcpmcp.WithString("level", mcpmcp.Description("One of: basic, standard, detailed, diagnostic")),
	), pingHandler(coord))

	s.AddTool(mcpmcp.NewTool("release_task",
		mcpmcp.WithDescription("Voluntarily release the currently assigned task, idempotently."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent identifier")),
		mcpmcp.WithString("task_id", mcpmcp.Required(), mcpmcp.Description("Task identifier")),
	), releaseTaskHandler(coord))
}

// ── Argument helpers ──────────────────────────────────────────────────────
//
// mcp-go's CallToolRequest exposes its arguments as a plain map[string]any
// (req.GetArguments()); handlers type-assert the fields they need directly
// rather than going through a typed binding layer.

func argString(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

func argFloat(args map[string]any, key string, def float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return def
}

func argStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// taggedErr prefixes err with its stable JSON-RPC code from §7's taxonomy,
// returned as the handler's error value so mcp-go reports it as a tool
// call failure.
func taggedErr(err error) error {
	return fmt.Errorf("[%d] %w", errs.Code(err), err)
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func registerAgentHandler(coord *coordinator.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		args := req.GetArguments()
		agentID := argString(args, "agent_id", "")
		name := argString(args, "name", "")
		role := argString(args, "role", "")
		skills := argStringSlice(args, "skills")

		capacity, err := coord.RegisterAgent(agentID, name, role, skills)
		if err != nil {
			return nil, taggedErr(err)
		}
		data, _ := json.Marshal(map[string]any{"agent_id": agentID, "capacity": capacity})
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func requestNextTaskHandler(coord *coordinator.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		agentID := argString(req.GetArguments(), "agent_id", "")

		result, err := coord.RequestNextTask(ctx, agentID)
		if err != nil {
			return nil, taggedErr(err)
		}
		if result.Task == nil {
			data, _ := json.Marshal(map[string]any{"task": nil, "reason": result.ReasonIfNone})
			return mcpmcp.NewToolResultText(string(data)), nil
		}
		data, _ := json.Marshal(map[string]any{
			"task":         result.Task,
			"instructions": result.Instructions,
		})
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func reportTaskProgressHandler(coord *coordinator.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		args := req.GetArguments()
		agentID := argString(args, "agent_id", "")
		taskID := argString(args, "task_id", "")
		status := argString(args, "status", "")
		progress := int(argFloat(args, "progress", 0))
		message := argString(args, "message", "")

		if err := coord.ReportTaskProgress(ctx, agentID, taskID, status, progress, message); err != nil {
			return nil, taggedErr(err)
		}
		return mcpmcp.NewToolResultText(`{"ok":true}`), nil
	}
}

func reportBlockerHandler(coord *coordinator.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		args := req.GetArguments()
		agentID := argString(args, "agent_id", "")
		taskID := argString(args, "task_id", "")
		description := argString(args, "description", "")
		severity := argString(args, "severity", "medium")

		if err := coord.ReportBlocker(ctx, agentID, taskID, description, severity); err != nil {
			return nil, taggedErr(err)
		}
		return mcpmcp.NewToolResultText(`{"ok":true}`), nil
	}
}

func getTaskContextHandler(coord *coordinator.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		taskID := argString(req.GetArguments(), "task_id", "")

		payload, err := coord.GetTaskContext(ctx, taskID)
		if err != nil {
			return nil, taggedErr(err)
		}
		data, _ := json.Marshal(payload)
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func pingHandler(coord *coordinator.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		level := coordinator.PingLevel(argString(req.GetArguments(), "level", string(coordinator.PingStandard)))
		report := coord.Ping(level)
		data, _ := json.Marshal(report)
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func releaseTaskHandler(coord *coordinator.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		args := req.GetArguments()
		agentID := argString(args, "agent_id", "")
		taskID := argString(args, "task_id", "")

		if err := coord.Release(ctx, agentID, taskID); err != nil {
			return nil, taggedErr(err)
		}
		return mcpmcp.NewToolResultText(`{"ok":true}`), nil
	}
}
