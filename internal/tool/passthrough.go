package tool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JagminasJ/AutoTaskMCP/internal/autotask"
	"github.com/JagminasJ/AutoTaskMCP/internal/shape"
)

// Passthrough exposes one upstream REST endpoint as a tool. The tool adds
// nothing to the request beyond credential headers and the maxRecords clamp;
// responses are shaped and size-bounded before returning.
type Passthrough struct {
	client *autotask.Client
	log    *slog.Logger

	name        string
	description string
	method      string
	// segments is the endpoint path; "{id}" and "{parentId}" are filled
	// from the call parameters.
	segments []string
	schema   map[string]any

	wantsSearch bool
	wantsBody   bool
	enforceMax  bool
	// checkBody, when set, can reject a request body before any upstream
	// call is made.
	checkBody func(body map[string]any) error
}

func (t *Passthrough) Name() string               { return t.name }
func (t *Passthrough) Description() string        { return t.description }
func (t *Passthrough) Parameters() map[string]any { return t.schema }

func (t *Passthrough) Execute(ctx context.Context, params map[string]any) (string, error) {
	segments := make([]string, len(t.segments))
	for i, s := range t.segments {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			key := strings.Trim(s, "{}")
			v := getSegment(params, key)
			if v == "" {
				return "", fmt.Errorf("%s: %s is required", t.name, key)
			}
			segments[i] = v
			continue
		}
		segments[i] = s
	}

	opts := autotask.CallOptions{Method: t.method}
	if t.wantsSearch {
		search := getString(params, "search")
		if search == "" {
			return "", fmt.Errorf("%s: search is required", t.name)
		}
		opts.Params = map[string]any{"search": search}
	}
	if t.wantsBody {
		body, _ := params["body"].(map[string]any)
		if t.checkBody != nil {
			if err := t.checkBody(body); err != nil {
				return "", err
			}
		}
		if t.enforceMax {
			body = shape.EnforceMaxRecords(body)
		}
		opts.Body = body
	}

	data, err := t.client.Call(ctx, t.client.URL(segments...), opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.name, err)
	}

	t.log.Debug("passthrough call complete", "tool", t.name, "method", t.method)
	return shape.Truncate(shape.Format(data, false), 0), nil
}

// companyNameFilterFields are ticket filter fields that look like a company
// name. Tickets carry no such field upstream, so filtering on one silently
// returns nothing.
var companyNameFilterFields = map[string]bool{
	"companyname": true,
	"company":     true,
	"accountname": true,
}

// rejectCompanyNameFilter fails a tickets query whose filter references a
// company name, pointing the agent at the tool that resolves names first.
func rejectCompanyNameFilter(body map[string]any) error {
	if !filterMentionsCompanyName(body) {
		return nil
	}
	return &StructuredError{Payload: map[string]any{
		"error":   "Invalid filter field",
		"message": "Tickets cannot be filtered by company name. Ticket records reference companies by numeric companyID only.",
		"suggestion": "Use findTicketsByCompanyName with the company name, or resolve the company ID first " +
			"(companiesUrlParameterQuery) and filter tickets on companyID.",
	}}
}

// filterMentionsCompanyName walks the filter tree, including nested grouping
// items, looking for a company-name-like field.
func filterMentionsCompanyName(body map[string]any) bool {
	if body == nil {
		return false
	}
	filters, _ := body["filter"].([]any)
	return anyFilterField(filters, func(field string) bool {
		return companyNameFilterFields[strings.ToLower(field)]
	})
}

func anyFilterField(filters []any, match func(string) bool) bool {
	for _, raw := range filters {
		f, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if field, ok := f["field"].(string); ok && match(field) {
			return true
		}
		if nested, ok := f["items"].([]any); ok && anyFilterField(nested, match) {
			return true
		}
	}
	return false
}
