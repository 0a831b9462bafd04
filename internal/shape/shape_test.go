package shape

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormat_Array(t *testing.T) {
	data := []any{map[string]any{"id": 1}, map[string]any{"id": 2}}
	out, ok := Format(data, true).(map[string]any)
	if !ok {
		t.Fatal("expected map envelope")
	}
	if out["count"] != 2 {
		t.Errorf("count = %v", out["count"])
	}
	if _, ok := out["_metadata"]; !ok {
		t.Error("expected _metadata when includeMetadata is true")
	}

	plain, ok := Format(data, false).(map[string]any)
	if !ok {
		t.Fatal("expected map envelope")
	}
	if _, ok := plain["_metadata"]; ok {
		t.Error("unexpected _metadata when includeMetadata is false")
	}
}

func TestFormat_NonArrayPassthrough(t *testing.T) {
	data := map[string]any{"id": 7}
	out, ok := Format(data, true).(map[string]any)
	if !ok {
		t.Fatal("expected map")
	}
	if out["id"] != 7 {
		t.Errorf("non-array payload was modified: %v", out)
	}
}

func TestTruncate_WithinLimit(t *testing.T) {
	data := []any{map[string]any{"id": float64(1)}}
	out := Truncate(data, 0)

	var decoded []any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Errorf("expected the data unmodified, got %s", out)
	}
}

func TestTruncate_HalvesArray(t *testing.T) {
	records := make([]any, 10)
	for i := range records {
		records[i] = map[string]any{"id": i, "pad": strings.Repeat("x", 50)}
	}
	full := Truncate(records, 0)

	out := Truncate(records, len(full)-1)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded["totalRecords"] != float64(10) {
		t.Errorf("totalRecords = %v, want 10", decoded["totalRecords"])
	}
	if decoded["returnedRecords"] != float64(5) {
		t.Errorf("returnedRecords = %v, want 5", decoded["returnedRecords"])
	}
	if _, ok := decoded["data"].([]any); !ok {
		t.Error("expected data array in truncation envelope")
	}
}

func TestTruncate_SummaryFallback(t *testing.T) {
	records := make([]any, 8)
	for i := range records {
		records[i] = map[string]any{"id": i, "pad": strings.Repeat("y", 200)}
	}
	// A cap too small for even half the records forces the summary object.
	out := Truncate(records, 100)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded["error"] != "Response too large" {
		t.Errorf("error = %v", decoded["error"])
	}
	if decoded["recordCount"] != float64(8) {
		t.Errorf("recordCount = %v, want 8", decoded["recordCount"])
	}
	// The summary itself may exceed the cap; the ceiling is best-effort.
	if decoded["suggestion"] == "" {
		t.Error("expected a suggestion in the summary")
	}
}

func TestTruncate_NonArrayOversized(t *testing.T) {
	big := map[string]any{"blob": strings.Repeat("z", 500)}
	out := Truncate(big, 50)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded["recordCount"] != float64(1) {
		t.Errorf("recordCount = %v, want 1 for non-array", decoded["recordCount"])
	}
}

func TestEnforceMaxRecords(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"nil body", nil, DefaultMaxRecords},
		{"absent field", map[string]any{"filter": []any{}}, DefaultMaxRecords},
		{"within limit", map[string]any{"maxRecords": float64(50)}, 50},
		{"above ceiling", map[string]any{"maxRecords": float64(500)}, MaxRecords},
		{"zero", map[string]any{"maxRecords": float64(0)}, DefaultMaxRecords},
		{"negative", map[string]any{"maxRecords": float64(-5)}, DefaultMaxRecords},
		{"int value", map[string]any{"maxRecords": 30}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EnforceMaxRecords(tt.body)
			got := out["maxRecords"].(int)
			if got != tt.want {
				t.Errorf("maxRecords = %d, want %d", got, tt.want)
			}
			if got < 1 || got > MaxRecords {
				t.Errorf("maxRecords %d outside [1, %d]", got, MaxRecords)
			}
		})
	}
}

func TestEnforceMaxRecords_PreservesFields(t *testing.T) {
	body := map[string]any{
		"filter":     []any{map[string]any{"field": "status", "op": "eq", "value": 1}},
		"maxRecords": float64(10),
	}
	out := EnforceMaxRecords(body)
	if _, ok := out["filter"]; !ok {
		t.Error("filter field dropped")
	}
	// The input body must not be mutated.
	if body["maxRecords"] != float64(10) {
		t.Error("input body was mutated")
	}
}

func TestExtractEssential(t *testing.T) {
	records := []any{
		map[string]any{"id": 1, "title": "a", "noise": "x"},
		map[string]any{"id": 2, "noise": "y"},
	}
	out := ExtractEssential(records, []string{"id", "title"})
	first := out[0].(map[string]any)
	if _, ok := first["noise"]; ok {
		t.Error("noise field survived extraction")
	}
	second := out[1].(map[string]any)
	if _, ok := second["title"]; ok {
		t.Error("absent field fabricated")
	}
}
