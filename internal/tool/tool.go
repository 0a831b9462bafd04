// Package tool defines the MCP tool surface: the Tool interface, the
// registry, the generated Autotask passthrough tools, and the composed
// company-tickets tool.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is the interface every exposed tool must implement.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// StructuredError is an error whose JSON payload must reach the calling
// agent verbatim, instead of being flattened to a message string. Used for
// results the agent is expected to act on, like not-found suggestions and
// misrouted-query redirections.
type StructuredError struct {
	Payload map[string]any
}

func (e *StructuredError) Error() string {
	data, err := json.MarshalIndent(e.Payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", e.Payload)
	}
	return string(data)
}

// --- param helpers ---

func getString(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// getSegment reads a path-segment parameter that agents send either as a
// string or a bare number.
func getSegment(params map[string]any, key string) string {
	switch v := params[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case json.Number:
		return v.String()
	}
	return ""
}

func getInt(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

// optionalInt distinguishes an absent parameter from an explicit zero.
func optionalInt(params map[string]any, key string) *int {
	if _, ok := params[key]; !ok {
		return nil
	}
	n := getInt(params, key)
	return &n
}

func getBoolDefault(params map[string]any, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}
