package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/steptype"
)

func sampleDocument() *Document {
	ticket := domain.NewTicket("Printer", 7, 500)
	ticket.Assign(3)
	ticket.AddAnswer(domain.StepAnswer{Title: "Urgent?", Type: steptype.TypeBoolean, Value: domain.BoolAnswer(true)})
	ticket.AddAnswer(domain.StepAnswer{Title: "Floor", Type: steptype.TypeInteger, Value: domain.IntAnswer(3)})
	ticket.AddAnswer(domain.StepAnswer{Title: "Toner", Type: steptype.TypeDouble, Value: domain.DoubleAnswer(0.25)})
	ticket.AddAnswer(domain.StepAnswer{Title: "Describe", Type: steptype.TypeString, Value: domain.StringAnswer("printer on fire")})
	ticket.AddAnswer(domain.StepAnswer{Title: "Tried", Type: steptype.TypeList, Value: domain.ListAnswer([]string{"restart", "kick"})})
	closed := domain.NewTicket("Login", 8, 400)
	closed.Open = false

	return &Document{
		Tickets: []*domain.Ticket{ticket, closed},
		TicketTypes: []*domain.TicketType{{
			Name:        "Support",
			Description: "Get help",
			Emoji:       "🛠️",
			Steps: []domain.StepDefinition{
				{Title: "Describe", Type: steptype.TypeString, Options: domain.Options{"maximumLength": json.RawMessage(`100`)}},
				{Title: "Where", Type: steptype.TypeSingleSelect, Options: domain.Options{"options": json.RawMessage(`{"🏠":"Home","🏢":"Office"}`)}},
			},
		}},
	}
}

func TestEncodeDecodeEncodeIsByteIdentical(t *testing.T) {
	reg := steptype.NewBuiltinRegistry()
	first, err := Encode(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	doc, skipped, err := Decode(first, reg)
	if err != nil || len(skipped) != 0 {
		t.Fatalf("decode: %v %v", err, skipped)
	}
	second, err := Encode(doc)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("documents differ:\n%s\n---\n%s", first, second)
	}
	if doc.Tickets[0].Channel != 400 {
		t.Fatalf("tickets must be ordered by channel")
	}
	steps := doc.Tickets[1].Steps
	if steps[1].Value.Kind() != domain.AnswerInteger || steps[2].Value.Double() != 0.25 || len(steps[4].Value.List()) != 2 {
		t.Fatalf("answer kinds not recovered: %+v", steps)
	}
	if !strings.Contains(string(first), `"answerType": "double"`) {
		t.Fatalf("answer kind must be persisted next to the answer:\n%s", first)
	}
}

func TestDecodeSkipsUnresolvedRecords(t *testing.T) {
	data := []byte(`{
	  "tickets": [
	    {"title": "ok", "author": 1, "channel": 10, "open": true, "assignees": [], "steps": []},
	    {"title": "bad", "author": 1, "channel": 11, "open": true, "assignees": [],
	     "steps": [{"title": "x", "type": "gone", "answer": 1, "answerType": "integer"}]},
	    {"title": "kind", "author": 1, "channel": 12, "open": true, "assignees": [],
	     "steps": [{"title": "x", "type": "integer", "answer": 1, "answerType": "complex"}]},
	    {"title": "dup", "author": 2, "channel": 10, "open": true, "assignees": [], "steps": []},
	    {"title": "bool as text", "author": 3, "channel": 13, "open": true, "assignees": [],
	     "steps": [{"title": "x", "type": "boolean", "answer": "definitely", "answerType": "string"}]},
	    {"title": "int as list", "author": 3, "channel": 14, "open": true, "assignees": [],
	     "steps": [{"title": "x", "type": "integer", "answer": ["a"], "answerType": "list"}]},
	    {"title": "select", "author": 3, "channel": 15, "open": true, "assignees": [],
	     "steps": [{"title": "x", "type": "single-select", "answer": "Home", "answerType": "string"},
	               {"title": "y", "type": "multi-select", "answer": ["Home"], "answerType": "list"}]}
	  ],
	  "ticketTypes": [
	    {"name": "A", "description": "", "emoji": "🅰️", "steps": [{"title": "t", "description": "", "type": "string", "options": {}}]},
	    {"name": "B", "description": "", "emoji": "🅱️", "steps": [{"title": "t", "description": "", "type": "missing", "options": {}}]},
	    {"name": "C", "description": "", "emoji": "©️", "steps": [{"title": "t", "description": "", "type": "integer", "options": {"min": "x"}}]}
	  ]
	}`)
	doc, skipped, err := Decode(data, steptype.NewBuiltinRegistry())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Tickets) != 2 || doc.Tickets[0].Title != "ok" || doc.Tickets[1].Title != "select" {
		t.Fatalf("unexpected tickets %+v", doc.Tickets)
	}
	if len(doc.TicketTypes) != 1 || doc.TicketTypes[0].Name != "A" {
		t.Fatalf("unexpected types %+v", doc.TicketTypes)
	}
	if len(skipped) != 7 {
		t.Fatalf("expected seven skipped records, got %v", skipped)
	}
	if skipped[0].Section != "tickets" || skipped[0].Index != 1 {
		t.Fatalf("unexpected first skip %+v", skipped[0])
	}
	if skipped[3].Index != 4 || skipped[4].Index != 5 {
		t.Fatalf("answers of the wrong kind must be skipped, got %v", skipped)
	}
}

func TestDecodeEmptyAndMalformed(t *testing.T) {
	doc, skipped, err := Decode(nil, nil)
	if err != nil || len(skipped) != 0 || len(doc.Tickets) != 0 {
		t.Fatalf("empty data is an empty document, got %+v %v %v", doc, skipped, err)
	}
	if _, _, err := Decode([]byte("{"), nil); err == nil {
		t.Fatalf("expected malformed document error")
	}
}

func newManager(t *testing.T, backend Backend) (*Manager, repository.TicketRepository, repository.TicketTypeRepository) {
	t.Helper()
	tickets := repository.NewTicketRepository()
	types := repository.NewTicketTypeRepository()
	m := NewManager(ManagerDependencies{
		Backend:    backend,
		Registry:   steptype.NewBuiltinRegistry(),
		TicketRepo: tickets,
		TypeRepo:   types,
	})
	return m, tickets, types
}

func seed(t *testing.T, tickets repository.TicketRepository, types repository.TicketTypeRepository) {
	t.Helper()
	ctx := context.Background()
	doc := sampleDocument()
	if err := tickets.Replace(ctx, doc.Tickets); err != nil {
		t.Fatalf("seed tickets: %v", err)
	}
	if err := types.Replace(ctx, doc.TicketTypes); err != nil {
		t.Fatalf("seed types: %v", err)
	}
}

func TestManagerRoundTripOverFile(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "nested", "data.json"))
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	m, tickets, types := newManager(t, backend)
	report, err := m.Load(ctx)
	if err != nil || report.Tickets != 0 {
		t.Fatalf("missing file loads empty, got %+v %v", report, err)
	}
	seed(t, tickets, types)
	if err := m.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, loadedTickets, _ := newManager(t, backend)
	report, err = loaded.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.Tickets != 2 || report.TicketTypes != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	ticket, err := loadedTickets.GetByChannel(ctx, 500)
	if err != nil || ticket.Steps[3].Value.Text() != "printer on fire" || !ticket.IsAssigned(3) {
		t.Fatalf("unexpected ticket %+v %v", ticket, err)
	}
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "ticketbot.db"), "default")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer backend.Close()

	data, err := backend.Load(ctx)
	if err != nil || data != nil {
		t.Fatalf("fresh database holds no document, got %q %v", data, err)
	}
	if err := backend.Save(ctx, []byte(`{"tickets":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := backend.Save(ctx, []byte(`{"tickets":[],"ticketTypes":[]}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err = backend.Load(ctx)
	if err != nil || string(data) != `{"tickets":[],"ticketTypes":[]}` {
		t.Fatalf("unexpected document %q %v", data, err)
	}
	if err := backend.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
