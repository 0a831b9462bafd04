// Package shape formats and bounds API responses before they are handed to
// the calling agent. Oversized payloads are progressively reduced: whole
// payload, then half the records, then a summary object. The size ceiling is
// best-effort — the final summary is returned regardless of its own size, and
// deeply nested records can in principle still exceed the cap.
package shape

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// MaxResponseSize is the serialized-response ceiling in bytes (~50KB).
	MaxResponseSize = 50000
	// DefaultMaxRecords is applied when a query body names no limit.
	DefaultMaxRecords = 20
	// MaxRecords is the hard per-query record ceiling.
	MaxRecords = 100
)

// Format wraps array payloads in a {count, records} envelope. Non-array
// payloads pass through unchanged.
func Format(data any, includeMetadata bool) any {
	records, ok := data.([]any)
	if !ok {
		return data
	}
	out := map[string]any{
		"count":   len(records),
		"records": records,
	}
	if includeMetadata {
		out["_metadata"] = map[string]any{
			"returnedAt":  time.Now().UTC().Format(time.RFC3339),
			"recordCount": len(records),
		}
	}
	return out
}

// Truncate serializes data, reducing it if the result exceeds maxSize bytes.
// Pass maxSize <= 0 for the default ceiling.
func Truncate(data any, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}

	full := marshal(data)
	if len(full) <= maxSize {
		return full
	}

	records, isArray := data.([]any)
	if isArray {
		half := records[:len(records)/2]
		summary := map[string]any{
			"totalRecords":    len(records),
			"returnedRecords": len(half),
			"message": fmt.Sprintf("Response truncated. Showing %d of %d records. Use filters or maxRecords to limit results.",
				len(half), len(records)),
			"data": half,
		}
		if s := marshal(summary); len(s) <= maxSize {
			return s
		}
	}

	recordCount := 1
	if isArray {
		recordCount = len(records)
	}
	return marshal(map[string]any{
		"error": "Response too large",
		"message": fmt.Sprintf("Response size (%d bytes) exceeds limit (%d bytes). Use filters, maxRecords, or more specific queries to reduce response size.",
			len(full), maxSize),
		"recordCount": recordCount,
		"suggestion":  "Add maxRecords parameter or use more specific filters",
	})
}

// EnforceMaxRecords clamps the maxRecords field of a query body to
// [1, MaxRecords], defaulting when absent or non-positive. All other body
// fields are preserved. This is the single gate preventing unbounded
// upstream result sets.
func EnforceMaxRecords(body map[string]any) map[string]any {
	if body == nil {
		return map[string]any{"maxRecords": DefaultMaxRecords}
	}

	requested := intField(body, "maxRecords")
	if requested < 1 {
		requested = DefaultMaxRecords
	}
	if requested > MaxRecords {
		requested = MaxRecords
	}

	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = v
	}
	out["maxRecords"] = requested
	return out
}

// ExtractEssential reduces each record to the named fields, dropping fields
// absent from a record. Empty input passes through.
func ExtractEssential(records []any, fields []string) []any {
	if len(records) == 0 {
		return records
	}
	out := make([]any, 0, len(records))
	for _, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			out = append(out, raw)
			continue
		}
		essential := make(map[string]any)
		for _, f := range fields {
			if v, ok := record[f]; ok {
				essential[f] = v
			}
		}
		out = append(out, essential)
	}
	return out
}

// intField reads a numeric body field that may arrive as any JSON number type.
func intField(body map[string]any, key string) int {
	switch v := body[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

func marshal(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Tool payloads are built from decoded JSON, so this is unreachable
		// in practice; return a diagnostic rather than panic.
		return fmt.Sprintf(`{"error":"failed to serialize response: %v"}`, err)
	}
	return string(data)
}
