package tool

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JagminasJ/AutoTaskMCP/internal/autotask"
	"github.com/JagminasJ/AutoTaskMCP/internal/shape"
)

// opKind enumerates the endpoint shapes an entity family can expose.
type opKind int

const (
	opURLQueryCount opKind = iota // GET  {base}/query/count?search=
	opQueryCount                  // POST {base}/query/count
	opURLQuery                    // GET  {base}/query?search=
	opQuery                       // POST {base}/query
	opQueryItem                   // GET  {base}/{id}
	opFieldDefinitions            // GET  {base}/entityInformation/fields
	opUserDefinedFieldDefinitions // GET  {base}/entityInformation/userDefinedFields
	opEntityInformation           // GET  {base}/entityInformation
	opCreate                      // POST {base}
	opUpdate                      // PUT  {base}
	opPatch                       // PATCH {base}
	opDelete                      // DELETE {base}/{id}
	opChildList                   // GET  {base} (child collections only)
)

// queryOps is the standard read-only operation set shared by most entities.
var queryOps = []opKind{
	opURLQueryCount, opQueryCount, opURLQuery, opQuery,
	opQueryItem, opFieldDefinitions, opUserDefinedFieldDefinitions, opEntityInformation,
}

// family describes one entity (or child collection) and the operations
// exposed for it. base may contain a "{parentId}" placeholder.
type family struct {
	prefix string // tool-name prefix, camelCase
	label  string // human-readable entity name for descriptions
	base   []string
	ops    []opKind
}

func families() []family {
	return []family{
		{
			prefix: "tickets", label: "tickets", base: []string{"Tickets"},
			ops: append(append([]opKind{}, queryOps...), opCreate, opUpdate, opPatch),
		},
		{
			prefix: "ticketCategories", label: "ticket categories", base: []string{"TicketCategories"},
			ops: append(append([]opKind{}, queryOps...), opUpdate, opPatch),
		},
		{
			prefix: "ticketCategoryFieldDefaults", label: "ticket category field defaults",
			base: []string{"TicketCategoryFieldDefaults"}, ops: queryOps,
		},
		{
			prefix: "ticketHistory", label: "ticket history entries",
			base: []string{"TicketHistory"}, ops: queryOps,
		},
		{
			prefix: "ticketNotes", label: "ticket notes",
			base: []string{"TicketNotes"}, ops: queryOps,
		},
		{
			// This entity exposes no user-defined fields upstream.
			prefix: "ticketNoteAttachments", label: "ticket note attachments",
			base: []string{"TicketNoteAttachments"},
			ops: []opKind{
				opURLQueryCount, opQueryCount, opURLQuery, opQuery,
				opQueryItem, opFieldDefinitions, opEntityInformation,
			},
		},
		{
			prefix: "ticketSecondaryResources", label: "ticket secondary resources",
			base: []string{"TicketSecondaryResources"}, ops: queryOps,
		},
		{
			prefix: "companies", label: "companies",
			base: []string{"Companies"}, ops: queryOps,
		},
		{
			prefix: "ticketCategoryFieldDefaultsChild", label: "field defaults of a ticket category",
			base: []string{"TicketCategories", "{parentId}", "FieldDefaults"},
			ops: []opKind{
				opChildList, opQueryItem,
				opFieldDefinitions, opUserDefinedFieldDefinitions, opEntityInformation,
			},
		},
		{
			prefix: "ticketNotesChild", label: "notes of a ticket",
			base: []string{"Tickets", "{parentId}", "Notes"},
			ops: []opKind{
				opChildList, opQueryItem,
				opFieldDefinitions, opUserDefinedFieldDefinitions, opEntityInformation,
				opCreate, opUpdate, opPatch,
			},
		},
		{
			prefix: "ticketNoteAttachmentsChild", label: "attachments of a ticket note",
			base: []string{"TicketNotes", "{parentId}", "Attachments"},
			ops:  []opKind{opChildList, opQueryItem, opCreate, opDelete},
		},
		{
			prefix: "ticketSecondaryResourcesChild", label: "secondary resources of a ticket",
			base: []string{"Tickets", "{parentId}", "SecondaryResources"},
			ops: []opKind{
				opChildList, opQueryItem,
				opFieldDefinitions, opUserDefinedFieldDefinitions, opEntityInformation,
				opCreate, opDelete,
			},
		},
	}
}

// RegisterPassthroughs builds the generated endpoint tools for every entity
// family and adds them to the registry.
func RegisterPassthroughs(reg *Registry, client *autotask.Client, logger *slog.Logger) {
	for _, fam := range families() {
		for _, kind := range fam.ops {
			reg.Register(newPassthrough(fam, kind, client, logger))
		}
	}
}

func newPassthrough(fam family, kind opKind, client *autotask.Client, logger *slog.Logger) *Passthrough {
	t := &Passthrough{
		client:      client,
		log:         logger,
		name:        fam.prefix + suffix(kind),
		description: describe(kind, fam.label),
	}

	base := fam.base
	switch kind {
	case opURLQueryCount:
		t.method, t.segments, t.wantsSearch = http.MethodGet, join(base, "query", "count"), true
	case opQueryCount:
		t.method, t.segments, t.wantsBody = http.MethodPost, join(base, "query", "count"), true
	case opURLQuery:
		t.method, t.segments, t.wantsSearch = http.MethodGet, join(base, "query"), true
	case opQuery:
		t.method, t.segments, t.wantsBody = http.MethodPost, join(base, "query"), true
		t.enforceMax = true
	case opQueryItem:
		t.method, t.segments = http.MethodGet, join(base, "{id}")
	case opFieldDefinitions:
		t.method, t.segments = http.MethodGet, join(base, "entityInformation", "fields")
	case opUserDefinedFieldDefinitions:
		t.method, t.segments = http.MethodGet, join(base, "entityInformation", "userDefinedFields")
	case opEntityInformation:
		t.method, t.segments = http.MethodGet, join(base, "entityInformation")
	case opCreate:
		t.method, t.segments, t.wantsBody = http.MethodPost, join(base), true
	case opUpdate:
		t.method, t.segments, t.wantsBody = http.MethodPut, join(base), true
	case opPatch:
		t.method, t.segments, t.wantsBody = http.MethodPatch, join(base), true
	case opDelete:
		t.method, t.segments = http.MethodDelete, join(base, "{id}")
	case opChildList:
		t.method, t.segments = http.MethodGet, join(base)
	}

	// Ticket queries filtered on a company name silently match nothing
	// upstream; reject them with a redirection instead.
	if t.name == "ticketsQuery" {
		t.checkBody = rejectCompanyNameFilter
	}

	t.schema = buildSchema(t)
	return t
}

func join(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

func suffix(kind opKind) string {
	switch kind {
	case opURLQueryCount:
		return "UrlParameterQueryCount"
	case opQueryCount:
		return "QueryCount"
	case opURLQuery:
		return "UrlParameterQuery"
	case opQuery, opChildList:
		return "Query"
	case opQueryItem:
		return "QueryItem"
	case opFieldDefinitions:
		return "QueryFieldDefinitions"
	case opUserDefinedFieldDefinitions:
		return "QueryUserDefinedFieldDefinitions"
	case opEntityInformation:
		return "QueryEntityInformation"
	case opCreate:
		return "CreateEntity"
	case opUpdate:
		return "UpdateEntity"
	case opPatch:
		return "PatchEntity"
	case opDelete:
		return "DeleteEntity"
	}
	return ""
}

// describe spells out what each generated tool returns. Count tools in
// particular are explicit that they return no records, since agents
// routinely confuse them with the record-returning variants.
func describe(kind opKind, label string) string {
	switch kind {
	case opURLQueryCount:
		return fmt.Sprintf("Count %s matching a simple text search. Returns a count only, never the records; use the Query variant for records.", label)
	case opQueryCount:
		return fmt.Sprintf("Count %s matching a JSON filter body. Returns a count only, never the records; use the Query variant for records.", label)
	case opURLQuery:
		return fmt.Sprintf("Search %s with a simple text string and return matching records.", label)
	case opQuery:
		return fmt.Sprintf("Query %s with a JSON filter body and return matching records. maxRecords is capped at %d (default %d).", label, shape.MaxRecords, shape.DefaultMaxRecords)
	case opQueryItem:
		return fmt.Sprintf("Fetch one of the %s by its ID.", label)
	case opFieldDefinitions:
		return fmt.Sprintf("Get the field definitions (names, types, picklists) for %s.", label)
	case opUserDefinedFieldDefinitions:
		return fmt.Sprintf("Get the user-defined field definitions for %s.", label)
	case opEntityInformation:
		return fmt.Sprintf("Get entity-level metadata (permissions, capabilities) for %s.", label)
	case opCreate:
		return fmt.Sprintf("Create one of the %s from a JSON body.", label)
	case opUpdate:
		return fmt.Sprintf("Replace one of the %s with a full JSON body (id in the body).", label)
	case opPatch:
		return fmt.Sprintf("Partially update one of the %s with a JSON body (id in the body).", label)
	case opDelete:
		return fmt.Sprintf("Delete one of the %s by its ID.", label)
	case opChildList:
		return fmt.Sprintf("List the %s.", label)
	}
	return ""
}

func buildSchema(t *Passthrough) map[string]any {
	props := map[string]any{}
	var required []string

	for _, s := range t.segments {
		switch s {
		case "{parentId}":
			props["parentId"] = map[string]any{"type": "string", "description": "ID of the parent record"}
			required = append(required, "parentId")
		case "{id}":
			props["id"] = map[string]any{"type": "string", "description": "Record ID"}
			required = append(required, "id")
		}
	}
	if t.wantsSearch {
		props["search"] = map[string]any{"type": "string", "description": "Text to search for"}
		required = append(required, "search")
	}
	if t.wantsBody {
		props["body"] = map[string]any{"type": "object", "description": "Request body forwarded to the API"}
		required = append(required, "body")
	}

	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
