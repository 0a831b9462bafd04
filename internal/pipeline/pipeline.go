// Package pipeline fetches and orders tickets for a resolved company.
//
// The upstream API's native sort and date filtering on ticket date fields is
// not trusted (behavior varies by field and is sometimes silently ignored),
// so the pipeline deliberately over-fetches a large unsorted batch and
// re-applies all date logic client-side. Correctness of "most recent N"
// depends on the over-fetch window being large enough to contain the true
// top-N after filtering; the factor and floor below are that policy.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"github.com/JagminasJ/AutoTaskMCP/internal/autotask"
)

const (
	// DefaultMaxRecords is the ticket count returned when the caller names none.
	DefaultMaxRecords = 50
	// MaxRecordsCeiling is the hard per-call ticket ceiling.
	MaxRecordsCeiling = 100

	// overFetchFactor and overFetchFloor size the candidate batch:
	// max(requested × overFetchFactor, overFetchFloor).
	overFetchFactor = 100
	overFetchFloor  = 500

	// staleAfterDays triggers the staleness warning when the newest ticket
	// is older than this.
	staleAfterDays = 180
)

// activityDateFields is the priority order for a ticket's effective date.
var activityDateFields = []string{"lastActivityDate", "createDate"}

// sortDateFields extends the effective-date chain for sorting purposes.
var sortDateFields = []string{"lastActivityDate", "createDate", "lastModifiedDate"}

// Params control one pipeline run.
type Params struct {
	CompanyID  int64
	MaxRecords int    // default DefaultMaxRecords, capped at MaxRecordsCeiling
	SortByDate bool   // descending by best-available date field
	SortField  string // optional preferred sort field, tried first
	DaysAgo    *int   // nil: default cutoff; 0: no cutoff; >0: now minus N days
}

// Meta annotates a result page for the calling agent.
type Meta struct {
	ReturnedCount   int    `json:"returnedCount"`
	RequestedCount  int    `json:"requestedCount"`
	FetchedCount    int    `json:"fetchedCount"`
	SortedBy        string `json:"sortedBy,omitempty"`
	FilterApplied   string `json:"filterApplied"`
	NewestDate      string `json:"newestDate,omitempty"`
	OldestDate      string `json:"oldestDate,omitempty"`
	DaysSinceNewest int    `json:"daysSinceNewest,omitempty"`
	Warning         string `json:"warning,omitempty"`
	Note            string `json:"note"`
}

// Result is one page of tickets plus its metadata.
type Result struct {
	Tickets []map[string]any
	Meta    Meta
}

// Pipeline fetches, filters, sorts, and trims tickets for a company.
type Pipeline struct {
	client        *autotask.Client
	log           *slog.Logger
	defaultCutoff time.Time
	now           func() time.Time
}

// New creates a pipeline. defaultCutoff is applied when a run specifies no
// time period at all.
func New(client *autotask.Client, defaultCutoff time.Time, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		client:        client,
		log:           logger,
		defaultCutoff: defaultCutoff,
		now:           time.Now,
	}
}

// Run executes the full fetch-filter-sort-trim sequence.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Result, error) {
	requested := params.MaxRecords
	if requested <= 0 {
		requested = DefaultMaxRecords
	}
	if requested > MaxRecordsCeiling {
		requested = MaxRecordsCeiling
	}

	batch, err := p.fetch(ctx, params.CompanyID, requested)
	if err != nil {
		return nil, err
	}
	fetched := len(batch)

	cutoff, filterDesc := p.cutoff(params.DaysAgo)
	dated := filterByDate(batch, cutoff)

	sortedBy := ""
	if params.SortByDate && len(dated) > 0 {
		sortedBy = sortTickets(dated, params.SortField)
	}

	if len(dated) > requested {
		dated = dated[:requested]
	}

	meta := Meta{
		ReturnedCount:  len(dated),
		RequestedCount: requested,
		FetchedCount:   fetched,
		SortedBy:       sortedBy,
		FilterApplied:  filterDesc,
	}
	p.annotate(&meta, dated)

	p.log.Debug("ticket pipeline complete",
		"company_id", params.CompanyID, "fetched", fetched, "returned", len(dated))

	return &Result{Tickets: dated, Meta: meta}, nil
}

// fetch over-requests tickets for the company with no server-side sort or
// date filter; both are re-applied locally.
func (p *Pipeline) fetch(ctx context.Context, companyID int64, requested int) ([]map[string]any, error) {
	window := requested * overFetchFactor
	if window < overFetchFloor {
		window = overFetchFloor
	}

	data, err := p.client.Call(ctx, p.client.URL("Tickets", "query"), autotask.CallOptions{
		Method: http.MethodPost,
		Body: autotask.QueryBody{
			// companyID is numeric upstream; sending it as a string makes
			// the filter silently match nothing.
			Filter:     []autotask.Filter{{Field: "companyID", Op: autotask.OpEq, Value: companyID}},
			MaxRecords: window,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tickets for company %d: %w", companyID, err)
	}

	batch := autotask.Records(data)
	if batch == nil {
		// An unrecognized object that still looks like a record is treated
		// as a one-element batch.
		if record, ok := data.(map[string]any); ok {
			if _, hasID := record["id"]; hasID {
				batch = []map[string]any{record}
			}
		}
	}
	return batch, nil
}

// cutoff resolves the date filter for a run: explicit zero disables it, a
// positive value means "now minus N days" truncated to that day's start, and
// absence applies the configured default reference date.
func (p *Pipeline) cutoff(daysAgo *int) (time.Time, string) {
	if daysAgo != nil {
		if *daysAgo <= 0 {
			return time.Time{}, "no date cutoff (all dated tickets)"
		}
		t := p.now().AddDate(0, 0, -*daysAgo)
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return t, fmt.Sprintf("tickets from the last %d days (on/after %s)", *daysAgo, t.Format("2006-01-02"))
	}
	return p.defaultCutoff, fmt.Sprintf("tickets dated on/after %s (default cutoff)", p.defaultCutoff.Format("2006-01-02"))
}

// filterByDate keeps tickets whose effective date is valid and not strictly
// before the cutoff. Tickets with no usable date are always excluded — a
// date is never fabricated for them. A zero cutoff passes all dated tickets.
func filterByDate(batch []map[string]any, cutoff time.Time) []map[string]any {
	out := make([]map[string]any, 0, len(batch))
	for _, ticket := range batch {
		date, ok := effectiveDate(ticket)
		if !ok {
			continue
		}
		if !cutoff.IsZero() && date.Before(cutoff) {
			continue
		}
		out = append(out, ticket)
	}
	return out
}

// effectiveDate returns the first field in the activity-date chain that
// parses to a real, non-epoch timestamp.
func effectiveDate(ticket map[string]any) (time.Time, bool) {
	return firstValidDate(ticket, activityDateFields)
}

func firstValidDate(ticket map[string]any, fields []string) (time.Time, bool) {
	for _, f := range fields {
		if t, ok := parseDate(ticket[f]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDate accepts the assorted date formats the upstream emits. The Unix
// epoch (and anything before it) marks an unset field, not a real date.
func parseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil || t.Unix() <= 0 {
		return time.Time{}, false
	}
	return t, true
}

// sortTickets orders the batch descending by the best-available date field,
// trying the caller's preferred field first. Tickets with no derivable sort
// date go last, preserving their relative order. Returns a description of
// the ordering applied.
func sortTickets(batch []map[string]any, preferredField string) string {
	chain := sortDateFields
	if preferredField != "" {
		chain = append([]string{preferredField}, sortDateFields...)
	}

	sort.SliceStable(batch, func(i, j int) bool {
		di, iOK := firstValidDate(batch[i], chain)
		dj, jOK := firstValidDate(batch[j], chain)
		switch {
		case iOK && jOK:
			return di.After(dj)
		case iOK:
			return true // dated before undated
		default:
			return false
		}
	})

	field := "lastActivityDate"
	if preferredField != "" {
		field = preferredField
	}
	return fmt.Sprintf("%s descending (client-side)", field)
}

// annotate fills in the observed date range and caller guidance.
func (p *Pipeline) annotate(meta *Meta, tickets []map[string]any) {
	if len(tickets) == 0 {
		meta.Note = "No tickets matched the date filter. This is not an error: the company may have no recent activity. Retry with daysAgo=0 to include all dated tickets."
		return
	}

	newest, oldest := dateRange(tickets)
	meta.NewestDate = newest.Format("2006-01-02")
	meta.OldestDate = oldest.Format("2006-01-02")
	meta.DaysSinceNewest = int(p.now().Sub(newest).Hours() / 24)
	if meta.DaysSinceNewest > staleAfterDays {
		meta.Warning = fmt.Sprintf("Newest ticket is %d days old; this company may be inactive.", meta.DaysSinceNewest)
	}
	meta.Note = fmt.Sprintf("Returned %d of %d requested tickets. Narrow with daysAgo or widen with daysAgo=0 if this is not what you need.",
		meta.ReturnedCount, meta.RequestedCount)
}

func dateRange(tickets []map[string]any) (newest, oldest time.Time) {
	for _, ticket := range tickets {
		d, ok := effectiveDate(ticket)
		if !ok {
			continue
		}
		if newest.IsZero() || d.After(newest) {
			newest = d
		}
		if oldest.IsZero() || d.Before(oldest) {
			oldest = d
		}
	}
	return newest, oldest
}
