// Package mcpserver exposes the tool registry and informational resources
// over the Model Context Protocol stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/JagminasJ/AutoTaskMCP/internal/logbuf"
	"github.com/JagminasJ/AutoTaskMCP/internal/tool"
)

const (
	serverName    = "autotask-mcp"
	serverVersion = "1.0.0"
)

// Server wires the tool registry into an MCP server.
type Server struct {
	mcp *server.MCPServer
	reg *tool.Registry
	log *slog.Logger
}

// New builds the MCP server, registering every tool in the registry and the
// informational resources. logs may be nil to skip the server-logs resource.
func New(reg *tool.Registry, logs *logbuf.Buffer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	m := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
	)

	s := &Server{mcp: m, reg: reg, log: logger}
	for _, t := range reg.Tools() {
		m.AddTool(rawTool(t), s.handler(t))
	}
	registerResources(m, logs)

	logger.Info("mcp server assembled", "tools", reg.Len())
	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func rawTool(t tool.Tool) mcp.Tool {
	schema, err := json.Marshal(t.Parameters())
	if err != nil {
		schema = []byte(`{"type":"object"}`)
	}
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema)
}

// handler adapts one registry tool to the transport. Nothing escapes the
// tool boundary: structured errors pass through verbatim as error results,
// plain errors are flattened, and panics are caught.
func (s *Server) handler(t tool.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("tool panicked", "tool", t.Name(), "panic", r)
				res = mcp.NewToolResultError(fmt.Sprintf("Error: internal failure in %s", t.Name()))
				retErr = nil
			}
		}()

		out, err := t.Execute(ctx, req.GetArguments())
		if err != nil {
			s.log.Warn("tool returned error", "tool", t.Name(), "error", err)
			var se *tool.StructuredError
			if errors.As(err, &se) {
				return mcp.NewToolResultError(se.Error()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error: %s", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
