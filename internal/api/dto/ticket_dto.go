package dto

import (
	"encoding/json"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// TicketResponse is the admin view of a ticket.
type TicketResponse struct {
	Title     string               `json:"title"`
	Author    string               `json:"author"`
	Channel   string               `json:"channel"`
	Open      bool                 `json:"open"`
	Status    domain.TicketStatus  `json:"status"`
	Assignees []string             `json:"assignees"`
	Steps     []StepAnswerResponse `json:"steps"`
}

// StepAnswerResponse is one captured answer.
type StepAnswerResponse struct {
	Title      string            `json:"title"`
	Type       string            `json:"type"`
	TypeName   string            `json:"typeName"`
	AnswerType domain.AnswerKind `json:"answerType"`
	Answer     any               `json:"answer"`
	Display    string            `json:"display"`
}

// TicketTypeRequest creates or replaces a ticket type. The emoji comes from the path.
type TicketTypeRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Steps       []StepDefinitionRequest `json:"steps"`
}

// StepDefinitionRequest describes one templated question.
type StepDefinitionRequest struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Type        string                     `json:"type"`
	Options     map[string]json.RawMessage `json:"options"`
}

// ToDomain converts the request into a TicketType keyed by emoji.
func (r TicketTypeRequest) ToDomain(emoji string) *domain.TicketType {
	steps := make([]domain.StepDefinition, 0, len(r.Steps))
	for _, s := range r.Steps {
		opts := domain.Options{}
		for k, v := range s.Options {
			opts[k] = v
		}
		steps = append(steps, domain.StepDefinition{
			Title:       s.Title,
			Description: s.Description,
			Type:        s.Type,
			Options:     opts,
		})
	}
	return &domain.TicketType{
		Name:        r.Name,
		Description: r.Description,
		Emoji:       emoji,
		Steps:       steps,
	}
}
