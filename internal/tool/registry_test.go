package tool

import (
	"context"
	"testing"
)

type fakeTool struct {
	name string
	out  string
}

func (f *fakeTool) Name() string               { return f.name }
func (f *fakeTool) Description() string        { return "fake" }
func (f *fakeTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (f *fakeTool) Execute(context.Context, map[string]any) (string, error) {
	return f.out, nil
}

func TestRegistry_RegisterAndExecute(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeTool{name: "b", out: "two"})
	reg.Register(&fakeTool{name: "a", out: "one"})

	if !reg.Has("a") || reg.Len() != 2 {
		t.Fatalf("registry state: has(a)=%v len=%d", reg.Has("a"), reg.Len())
	}

	out, err := reg.Execute(context.Background(), "b", nil)
	if err != nil || out != "two" {
		t.Errorf("Execute = (%q, %v)", out, err)
	}

	if _, err := reg.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("unknown tool must be an error")
	}

	names := reg.List()
	if names[0] != "a" || names[1] != "b" {
		t.Errorf("List must be sorted, got %v", names)
	}
}
