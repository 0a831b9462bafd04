package autotask

// wrapperKeys are the object keys under which the API (or an intermediate
// envelope) may nest a record array. Upstream query responses use "items";
// the other shapes appear in shaped or truncated payloads.
var wrapperKeys = []string{"items", "records", "data"}

// Records normalizes a decoded response into a flat record slice. It accepts
// a bare array or an object wrapping the array under a known key, and returns
// nil for anything else.
func Records(data any) []map[string]any {
	switch v := data.(type) {
	case []any:
		return recordSlice(v)
	case map[string]any:
		for _, key := range wrapperKeys {
			if inner, ok := v[key].([]any); ok {
				return recordSlice(inner)
			}
		}
	}
	return nil
}

func recordSlice(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			out = append(out, record)
		}
	}
	return out
}
