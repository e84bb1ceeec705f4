package notice

import (
	"strings"
	"testing"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
)

func TestSummaryRendersStepsAndAssignees(t *testing.T) {
	store := messages.Defaults()
	ticket := domain.NewTicket("Printer", 7, 300)
	ticket.AddAnswer(domain.StepAnswer{Title: "Describe issue", Type: "string", Value: domain.StringAnswer("printer on fire")})
	ticket.Assign(9)

	content := Summary(store, func(id string) string { return strings.ToUpper(id) }, ticket)
	if content.Title != "Ticket: Printer" {
		t.Fatalf("unexpected title %q", content.Title)
	}
	for _, want := range []string{"<@7>", "<#300>", "Open", "1. Describe issue *(STRING)*: printer on fire", "1. <@9>"} {
		if !strings.Contains(content.Description, want) {
			t.Fatalf("description %q missing %q", content.Description, want)
		}
	}
}

func TestSummaryEmptyMarkers(t *testing.T) {
	store := messages.Defaults()
	ticket := domain.NewTicket("Empty", 1, 2)
	ticket.Open = false
	content := Summary(store, nil, ticket)
	if strings.Count(content.Description, store.Get(messages.ListEmptyFormat)) != 2 {
		t.Fatalf("expected empty markers for steps and assignees: %q", content.Description)
	}
	if !strings.Contains(content.Description, store.Get(messages.DataOpenNo)) {
		t.Fatalf("closed tickets render the closed marker")
	}
}
