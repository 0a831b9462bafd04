package tool

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JagminasJ/AutoTaskMCP/internal/autotask"
	"github.com/JagminasJ/AutoTaskMCP/internal/config"
	"github.com/JagminasJ/AutoTaskMCP/internal/pipeline"
	"github.com/JagminasJ/AutoTaskMCP/internal/resolver"
)

func newCompanyTickets(t *testing.T, handler http.Handler) *CompanyTickets {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := autotask.New(&config.Config{BaseURL: server.URL}, testLogger())
	res := resolver.New(client, testLogger())
	pipe := pipeline.New(client, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), testLogger())
	return NewCompanyTickets(res, pipe, testLogger())
}

func TestCompanyTickets_EndToEnd(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(req.URL.Path, "/Companies/"):
			json.NewEncoder(w).Encode(map[string]any{"items": []any{
				map[string]any{"id": 42, "companyName": "Acme Corp"},
			}})
		case strings.HasPrefix(req.URL.Path, "/Tickets/"):
			json.NewEncoder(w).Encode(map[string]any{"items": []any{
				map[string]any{
					"id": 1, "ticketNumber": "T001", "title": "Old printer",
					"lastActivityDate": "2024-01-15T00:00:00Z",
					"description":      "a very long internal field that must be dropped",
				},
				map[string]any{
					"id": 2, "ticketNumber": "T002", "title": "New outage",
					"lastActivityDate": "2024-03-01T00:00:00Z",
				},
			}})
		default:
			t.Errorf("unexpected path %s", req.URL.Path)
		}
	})

	out, err := newCompanyTickets(t, handler).Execute(context.Background(), map[string]any{
		"companyName": "acme corp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	company := payload["company"].(map[string]any)
	if company["id"] != float64(42) || company["name"] != "Acme Corp" {
		t.Errorf("company = %v", company)
	}
	tickets := payload["tickets"].([]any)
	if len(tickets) != 2 {
		t.Fatalf("tickets = %d, want 2", len(tickets))
	}
	first := tickets[0].(map[string]any)
	if first["ticketNumber"] != "T002" {
		t.Errorf("expected newest first, got %v", first["ticketNumber"])
	}
	if _, ok := first["description"]; ok {
		t.Error("non-essential fields must be stripped")
	}
	meta := payload["_meta"].(map[string]any)
	if meta["returnedCount"] != float64(2) {
		t.Errorf("meta = %v", meta)
	}
}

func TestCompanyTickets_NotFoundIsStructured(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	})

	_, err := newCompanyTickets(t, handler).Execute(context.Background(), map[string]any{
		"companyName": "Ghost Ltd",
	})
	var se *StructuredError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StructuredError, got %v", err)
	}
	if se.Payload["error"] != "Company not found" {
		t.Errorf("payload = %v", se.Payload)
	}
	if se.Payload["companyName"] != "Ghost Ltd" {
		t.Errorf("payload must echo the searched name: %v", se.Payload)
	}
}

func TestCompanyTickets_RequiresCompanyName(t *testing.T) {
	ct := newCompanyTickets(t, http.NotFoundHandler())
	if _, err := ct.Execute(context.Background(), map[string]any{}); err == nil {
		t.Error("missing companyName must be an error")
	}
}

func TestCompanyTickets_DaysAgoZeroPassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(req.URL.Path, "/Companies/") {
			json.NewEncoder(w).Encode(map[string]any{"items": []any{
				map[string]any{"id": 7, "companyName": "Initech"},
			}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"items": []any{
			map[string]any{"id": 9, "lastActivityDate": "2018-04-01T00:00:00Z"},
		}})
	})

	out, err := newCompanyTickets(t, handler).Execute(context.Background(), map[string]any{
		"companyName": "Initech",
		"daysAgo":     float64(0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	json.Unmarshal([]byte(out), &payload)
	if payload["count"] != float64(1) {
		t.Errorf("daysAgo=0 must disable the default cutoff, got count %v", payload["count"])
	}
}
