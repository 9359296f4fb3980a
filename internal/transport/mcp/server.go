// Package mcp implements the JSON-RPC-over-stdio tool surface (§6.3):
// register_agent, request_next_task, report_task_progress, report_blocker,
// get_task_context, ping, release_task. Transport is single-client stdio,
// not the teacher's multi-client HTTP/SSE session model — there is no
// session registry here, since every tool call carries its own agent_id.
package mcp

import (
	"context"
	"io"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/marcus-ai/marcus/internal/service/coordinator"
)

// Server wraps the mark3labs/mcp-go MCPServer and its stdio transport.
// Tools are registered in tools.go; this file owns only construction and
// the stdio run loop.
type Server struct {
	mcpSrv *mcpserver.MCPServer
	log    *slog.Logger
}

func New(coord *coordinator.Service, log *slog.Logger) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		"marcus",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)
	RegisterTools(mcpSrv, coord, log)
	return &Server{mcpSrv: mcpSrv, log: log}
}

// Run serves the tool surface over the given stdio streams until ctx is
// cancelled, following the teacher's stdio-mode idiom.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	stdioSrv := mcpserver.NewStdioServer(s.mcpSrv)
	return stdioSrv.Listen(ctx, in, out)
}
