package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JagminasJ/AutoTaskMCP/internal/pipeline"
	"github.com/JagminasJ/AutoTaskMCP/internal/resolver"
	"github.com/JagminasJ/AutoTaskMCP/internal/shape"
)

// essentialTicketFields is the slimmed record shape returned for company
// ticket lookups. Full records are available via ticketsQueryItem.
var essentialTicketFields = []string{
	"id", "ticketNumber", "title", "companyID", "contactID",
	"status", "priority", "createDate", "lastActivityDate", "dueDateTime",
}

// CompanyTickets resolves a company name to its ID and returns the company's
// most recent tickets. It is the composed alternative to filtering
// ticketsQuery by hand, which cannot work on a company name.
type CompanyTickets struct {
	resolver *resolver.Resolver
	pipeline *pipeline.Pipeline
	log      *slog.Logger
}

func NewCompanyTickets(res *resolver.Resolver, pipe *pipeline.Pipeline, logger *slog.Logger) *CompanyTickets {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyTickets{resolver: res, pipeline: pipe, log: logger}
}

func (t *CompanyTickets) Name() string { return "findTicketsByCompanyName" }

func (t *CompanyTickets) Description() string {
	return "Find recent tickets for a company by its name. Resolves the name to a company ID, then returns " +
		"the most recent tickets sorted newest first, with old and undated tickets filtered out. " +
		"Use daysAgo to narrow the time window, or daysAgo=0 to include all dated tickets."
}

func (t *CompanyTickets) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"companyName": map[string]any{"type": "string", "description": "Company name to look up (fuzzy matched)"},
			"maxRecords":  map[string]any{"type": "integer", "description": fmt.Sprintf("Max tickets to return (default %d, max %d)", pipeline.DefaultMaxRecords, pipeline.MaxRecordsCeiling)},
			"sortByDate":  map[string]any{"type": "boolean", "description": "Sort newest first (default true)"},
			"sortField":   map[string]any{"type": "string", "description": "Preferred date field to sort by (default lastActivityDate)"},
			"daysAgo":     map[string]any{"type": "integer", "description": "Only tickets from the last N days; 0 disables the date cutoff entirely"},
		},
		"required": []string{"companyName"},
	}
}

func (t *CompanyTickets) Execute(ctx context.Context, params map[string]any) (string, error) {
	companyName := getString(params, "companyName")
	if companyName == "" {
		return "", fmt.Errorf("findTicketsByCompanyName: companyName is required")
	}

	log := t.log.With("tool", t.Name(), "call_id", uuid.NewString())
	log.Info("resolving company", "company", companyName)

	match, err := t.resolver.Resolve(ctx, companyName)
	if err != nil {
		var nf *resolver.NotFoundError
		if errors.As(err, &nf) {
			return "", &StructuredError{Payload: map[string]any{
				"error":       "Company not found",
				"companyName": nf.CompanyName,
				"suggestions": nf.Suggestions,
				"suggestion":  "Check the spelling, or search directly with companiesUrlParameterQuery.",
			}}
		}
		return "", fmt.Errorf("findTicketsByCompanyName: %w", err)
	}
	log.Info("company resolved", "company_id", match.CompanyID, "matched_name", match.Name)

	result, err := t.pipeline.Run(ctx, pipeline.Params{
		CompanyID:  match.CompanyID,
		MaxRecords: getInt(params, "maxRecords"),
		SortByDate: getBoolDefault(params, "sortByDate", true),
		SortField:  getString(params, "sortField"),
		DaysAgo:    optionalInt(params, "daysAgo"),
	})
	if err != nil {
		return "", fmt.Errorf("findTicketsByCompanyName: %w", err)
	}

	tickets := make([]any, len(result.Tickets))
	for i, tk := range result.Tickets {
		tickets[i] = tk
	}
	payload := map[string]any{
		"company": map[string]any{"id": match.CompanyID, "name": match.Name},
		"count":   len(tickets),
		"tickets": shape.ExtractEssential(tickets, essentialTicketFields),
		"_meta":   result.Meta,
	}
	return shape.Truncate(payload, 0), nil
}
