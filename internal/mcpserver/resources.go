package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/JagminasJ/AutoTaskMCP/internal/logbuf"
)

// serverLogLimit caps how many recent log entries the logs resource returns.
const serverLogLimit = 200

// registerResources adds the static guidance resources that steer agents
// toward the right tool, plus the live server-logs resource.
func registerResources(m *server.MCPServer, logs *logbuf.Buffer) {
	m.AddResource(
		mcp.NewResource("autotask://api-documentation", "Autotask API Documentation",
			mcp.WithResourceDescription("How this server maps onto the Autotask REST API"),
			mcp.WithMIMEType("application/json"),
		),
		staticJSON("autotask://api-documentation", apiDocumentation),
	)
	m.AddResource(
		mcp.NewResource("autotask://query-examples", "Query Examples",
			mcp.WithResourceDescription("Worked examples of filter bodies and searches"),
			mcp.WithMIMEType("application/json"),
		),
		staticJSON("autotask://query-examples", queryExamples),
	)
	m.AddResource(
		mcp.NewResource("autotask://entity-info", "Entity Information",
			mcp.WithResourceDescription("Key fields and relationships of the exposed entities"),
			mcp.WithMIMEType("application/json"),
		),
		staticJSON("autotask://entity-info", entityInfo),
	)
	m.AddResource(
		mcp.NewResource("autotask://available-tools", "Available Tools",
			mcp.WithResourceDescription("Tool selection guidance, including count vs. detail tools"),
			mcp.WithMIMEType("application/json"),
		),
		staticJSON("autotask://available-tools", availableTools),
	)
	if logs != nil {
		m.AddResource(
			mcp.NewResource("autotask://server-logs", "Server Logs",
				mcp.WithResourceDescription("Recent server log entries, oldest first"),
				mcp.WithMIMEType("application/json"),
			),
			func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				return jsonContents("autotask://server-logs", logs.Recent(serverLogLimit))
			},
		)
	}
}

func staticJSON(uri string, v any) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(uri, v)
	}
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

var apiDocumentation = map[string]any{
	"title":       "Autotask REST API access",
	"description": "This server exposes Autotask ticketing endpoints as tools. Credentials are injected automatically.",
	"availableEntities": []string{
		"Tickets", "TicketCategories", "TicketCategoryFieldDefaults", "TicketHistory",
		"TicketNotes", "TicketNoteAttachments", "TicketSecondaryResources", "Companies",
	},
	"commonOperations": map[string]any{
		"query":      "POST *Query tools with a filter body return records",
		"queryCount": "POST *QueryCount tools return a count only, never records",
		"getById":    "*QueryItem tools retrieve one record by ID",
		"search":     "*UrlParameterQuery tools take a simple search string",
	},
	"responseOptimization": map[string]any{
		"alwaysUseMaxRecords": "Include maxRecords (20-50 recommended); it is clamped to 100 regardless",
		"useCountForNumbers":  "Use *QueryCount tools when only the count is needed",
		"responseLimit":       "Responses are truncated around 50KB; narrow the query if you see a truncation message",
	},
	"ticketsByCompanyName": "Use findTicketsByCompanyName. Tickets reference companies by numeric companyID only; filtering tickets on a company name does not work.",
}

var queryExamples = map[string]any{
	"examples": []map[string]any{
		{
			"name": "Recent tickets for a known company ID",
			"tool": "ticketsQuery",
			"body": map[string]any{
				"filter":     []map[string]any{{"field": "companyID", "op": "eq", "value": 123}},
				"maxRecords": 10,
				"sort":       []map[string]any{{"field": "createDate", "direction": "DESC"}},
			},
		},
		{
			"name": "Recent tickets when only the company name is known",
			"tool": "findTicketsByCompanyName",
			"params": map[string]any{
				"companyName": "Acme Corp",
				"maxRecords":  10,
			},
		},
		{
			"name": "Count tickets in a status",
			"tool": "ticketsQueryCount",
			"body": map[string]any{
				"filter": []map[string]any{{"field": "status", "op": "eq", "value": 5}},
			},
			"note": "Returns only a number",
		},
		{
			"name":   "Text search in tickets",
			"tool":   "ticketsUrlParameterQuery",
			"params": map[string]any{"search": "printer offline"},
		},
	},
	"filterOperators": []string{
		"eq", "noteq", "gt", "gte", "lt", "lte",
		"beginsWith", "endsWith", "contains", "exist", "notexist",
	},
	"sortDirections": []string{"ASC", "DESC"},
}

var entityInfo = map[string]any{
	"entities": map[string]any{
		"Tickets": map[string]any{
			"description": "Service tickets representing customer issues or requests",
			"keyFields": []string{
				"id", "ticketNumber", "title", "companyID", "contactID",
				"status", "priority", "createDate", "dueDateTime",
			},
			"relatedEntities": []string{"Companies", "TicketCategories", "TicketNotes"},
		},
		"TicketCategories": map[string]any{
			"description": "Categories for organizing and classifying tickets",
			"keyFields":   []string{"id", "name", "displayColorRGB"},
		},
		"Companies": map[string]any{
			"description": "Customer companies",
			"keyFields": []string{
				"id", "companyName", "accountNumber", "phone",
				"address1", "city", "state", "postalCode",
			},
		},
	},
	"relationships": map[string]any{
		"Tickets -> Companies":        "tickets reference companies via the numeric companyID field",
		"Tickets -> TicketCategories": "tickets are categorized via categoryID",
		"Tickets -> TicketNotes":      "notes attach to tickets; use the ticketNotesChild* tools with the ticket ID as parentId",
	},
}

var availableTools = map[string]any{
	"highLevel": []map[string]any{
		{
			"name":        "findTicketsByCompanyName",
			"description": "Resolve a company name and return its most recent tickets, filtered and sorted",
			"useCase":     "Any request like 'show tickets for <company name>'",
		},
	},
	"toolSelection": map[string]any{
		"simpleSearch":     "Use *UrlParameterQuery tools",
		"complexFiltering": "Use *Query tools with a body parameter",
		"countOnly":        "Use *QueryCount tools; they return ONLY a number, never records",
		"singleRecord":     "Use *QueryItem tools",
	},
	"warnings": map[string]any{
		"countVsDetail": "Do not use *QueryCount when the user wants to see records. 'How many' means count; 'show', 'list', 'get', 'find' mean records.",
		"companyName":   "ticketsQuery cannot filter on a company name; use findTicketsByCompanyName instead.",
	},
}
