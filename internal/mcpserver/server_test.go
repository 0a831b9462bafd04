package mcpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JagminasJ/AutoTaskMCP/internal/logbuf"
	"github.com/JagminasJ/AutoTaskMCP/internal/tool"
)

type stubTool struct {
	name string
	out  string
	err  error
	boom bool
}

func (s *stubTool) Name() string               { return s.name }
func (s *stubTool) Description() string        { return "stub" }
func (s *stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (s *stubTool) Execute(context.Context, map[string]any) (string, error) {
	if s.boom {
		panic("kaboom")
	}
	return s.out, s.err
}

func newTestServer(tools ...tool.Tool) *Server {
	reg := tool.NewRegistry()
	for _, t := range tools {
		reg.Register(t)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(reg, logbuf.New(16), logger)
}

func callText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T", res.Content[0])
	}
	return text.Text
}

func TestHandler_Success(t *testing.T) {
	st := &stubTool{name: "ok", out: `{"count": 1}`}
	s := newTestServer(st)

	res, err := s.handler(st)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("transport error: %v", err)
	}
	if res.IsError {
		t.Error("success must not be an error result")
	}
	if callText(t, res) != `{"count": 1}` {
		t.Errorf("text = %q", callText(t, res))
	}
}

func TestHandler_PlainErrorIsPrefixed(t *testing.T) {
	st := &stubTool{name: "bad", err: errors.New("upstream timeout")}
	s := newTestServer(st)

	res, err := s.handler(st)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("errors must become error results, not transport errors: %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result")
	}
	if got := callText(t, res); got != "Error: upstream timeout" {
		t.Errorf("text = %q", got)
	}
}

func TestHandler_StructuredErrorPassesVerbatim(t *testing.T) {
	st := &stubTool{name: "nf", err: &tool.StructuredError{Payload: map[string]any{
		"error":       "Company not found",
		"suggestions": []string{"Acme Corp"},
	}}}
	s := newTestServer(st)

	res, err := s.handler(st)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("transport error: %v", err)
	}
	text := callText(t, res)
	if strings.HasPrefix(text, "Error:") {
		t.Errorf("structured payload must not be prefixed: %q", text)
	}
	if !strings.Contains(text, `"Company not found"`) || !strings.Contains(text, "Acme Corp") {
		t.Errorf("payload not passed through: %q", text)
	}
}

func TestHandler_PanicIsContained(t *testing.T) {
	st := &stubTool{name: "explosive", boom: true}
	s := newTestServer(st)

	res, err := s.handler(st)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("panic must not escape as a transport error: %v", err)
	}
	if !res.IsError {
		t.Error("panic must surface as an error result")
	}
	if !strings.Contains(callText(t, res), "explosive") {
		t.Errorf("text = %q", callText(t, res))
	}
}
