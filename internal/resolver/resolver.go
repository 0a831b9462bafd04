// Package resolver turns a free-text company name into an Autotask company
// ID. The upstream search behavior is inconsistent across endpoints, so
// resolution runs several strategies in order and applies a tiered matching
// policy to whatever candidates turn up.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JagminasJ/AutoTaskMCP/internal/autotask"
)

const (
	containsResultCap = 20
	exactResultCap    = 10
	maxSuggestions    = 5
)

// idFields are the field names under which a company record may carry its
// identifier, in lookup order.
var idFields = []string{"id", "companyID", "companyId"}

// nameFields are the field names under which a company record may carry its
// display name, in lookup order.
var nameFields = []string{"companyName", "name"}

// Match is a successful resolution.
type Match struct {
	CompanyID int64
	Name      string
}

// NotFoundError reports that no strategy produced a usable match. It carries
// up to 5 candidate names seen along the way as retry suggestions.
type NotFoundError struct {
	CompanyName string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no company found matching %q", e.CompanyName)
	}
	return fmt.Sprintf("no company found matching %q (similar: %s)",
		e.CompanyName, strings.Join(e.Suggestions, ", "))
}

// Resolver looks up companies via the Autotask API.
type Resolver struct {
	client *autotask.Client
	log    *slog.Logger
}

// New creates a resolver backed by the given client.
func New(client *autotask.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, log: logger}
}

// strategy is one fallible search attempt. Strategies run in order; the
// first to yield any candidate wins, and individual failures are logged and
// skipped rather than aborting resolution.
type strategy struct {
	name string
	run  func(ctx context.Context, companyName string) (any, error)
}

func (r *Resolver) strategies() []strategy {
	return []strategy{
		{name: "simple search", run: r.simpleSearch},
		{name: "per-word contains", run: r.perWordContains},
		{name: "exact match", run: r.exactMatch},
	}
}

// Resolve finds the company ID for a human-readable name. On failure it
// returns a *NotFoundError; any other error kind is unexpected.
func (r *Resolver) Resolve(ctx context.Context, companyName string) (*Match, error) {
	var pool []map[string]any

	for _, s := range r.strategies() {
		data, err := s.run(ctx, companyName)
		if err != nil {
			r.log.Warn("company search strategy failed",
				"strategy", s.name, "company", companyName, "error", err)
			continue
		}
		candidates := autotask.Records(data)
		if len(candidates) == 0 {
			continue
		}
		pool = append(pool, candidates...)
		r.log.Debug("company search strategy matched",
			"strategy", s.name, "candidates", len(candidates))
		break
	}

	best := selectBest(pool, companyName)
	if best == nil {
		return nil, &NotFoundError{CompanyName: companyName, Suggestions: suggestions(pool)}
	}

	id, ok := extractID(best)
	if !ok {
		// A nominal match without an identifier is useless downstream.
		r.log.Warn("matched company record has no identifier field", "company", companyName)
		return nil, &NotFoundError{CompanyName: companyName, Suggestions: suggestions(pool)}
	}

	return &Match{CompanyID: id, Name: candidateName(best)}, nil
}

// simpleSearch issues the generic text search endpoint with the full input.
func (r *Resolver) simpleSearch(ctx context.Context, companyName string) (any, error) {
	return r.client.Call(ctx, r.client.URL("Companies", "query"), autotask.CallOptions{
		Method: http.MethodGet,
		Params: map[string]any{"search": companyName},
	})
}

// perWordContains splits the input on whitespace and runs a contains filter
// per token, stopping at the first token that yields any result.
func (r *Resolver) perWordContains(ctx context.Context, companyName string) (any, error) {
	var lastErr error
	for _, token := range strings.Fields(companyName) {
		data, err := r.client.Call(ctx, r.client.URL("Companies", "query"), autotask.CallOptions{
			Method: http.MethodPost,
			Body: autotask.QueryBody{
				Filter:     []autotask.Filter{{Field: "companyName", Op: autotask.OpContains, Value: token}},
				MaxRecords: containsResultCap,
			},
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(autotask.Records(data)) > 0 {
			return data, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// exactMatch queries for exact field equality on the full input.
func (r *Resolver) exactMatch(ctx context.Context, companyName string) (any, error) {
	return r.client.Call(ctx, r.client.URL("Companies", "query"), autotask.CallOptions{
		Method: http.MethodPost,
		Body: autotask.QueryBody{
			Filter:     []autotask.Filter{{Field: "companyName", Op: autotask.OpEq, Value: companyName}},
			MaxRecords: exactResultCap,
		},
	})
}

// selectBest applies the tiered match policy: exact case-insensitive name
// equality, then substring containment in either direction, then the first
// candidate as a last resort.
func selectBest(pool []map[string]any, companyName string) map[string]any {
	if len(pool) == 0 {
		return nil
	}
	search := normalizeName(companyName)

	for _, c := range pool {
		if normalizeName(candidateName(c)) == search {
			return c
		}
	}
	for _, c := range pool {
		name := normalizeName(candidateName(c))
		if name == "" {
			continue
		}
		if strings.Contains(name, search) || strings.Contains(search, name) {
			return c
		}
	}
	return pool[0]
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func candidateName(c map[string]any) string {
	for _, f := range nameFields {
		if s, ok := c[f].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// suggestions returns the first distinct non-empty candidate names, capped.
func suggestions(pool []map[string]any) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range pool {
		name := candidateName(c)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// extractID pulls the numeric company identifier out of a record, trying the
// known field aliases. The ID is returned as a number because the upstream
// companyID filter field is strongly typed.
func extractID(c map[string]any) (int64, bool) {
	for _, f := range idFields {
		v, ok := c[f]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n), true
		case int64:
			return n, true
		case int:
			return int64(n), true
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, true
			}
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}
