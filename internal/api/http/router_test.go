package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/session"
	"github.com/spec-kit/ticket-bot/internal/steptype"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

type sink struct {
	messages  []transport.MessageEvent
	reactions []transport.ReactionEvent
}

func (s *sink) MessageReceived(_ context.Context, ev transport.MessageEvent) error {
	s.messages = append(s.messages, ev)
	return nil
}

func (s *sink) ReactionReceived(_ context.Context, ev transport.ReactionEvent) error {
	s.reactions = append(s.reactions, ev)
	return nil
}

type testServer struct {
	app     *fiber.App
	admin   string
	gateway string
	sink    *sink
	tickets repository.TicketRepository
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", 5)
	admin, _, err := tokens.GenerateToken("1", []string{auth.ScopeAdmin})
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}
	gateway, _, err := tokens.GenerateToken("bridge", []string{auth.ScopeGateway})
	if err != nil {
		t.Fatalf("gateway token: %v", err)
	}

	tickets := repository.NewTicketRepository()
	catalog := service.NewCatalogService(service.CatalogDependencies{
		TypeRepo: repository.NewTicketTypeRepository(),
		Registry: steptype.NewBuiltinRegistry(),
	})
	ticketService := service.NewTicketService(service.TicketDependencies{TicketRepo: tickets})
	events := &sink{}
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("ticket-bot", "test", nil),
		Gateway:        handlers.NewGatewayHandler(events),
		Tickets:        handlers.NewTicketsHandler(ticketService, catalog),
		TicketTypes:    handlers.NewTicketTypesHandler(catalog),
		Sessions:       handlers.NewSessionsHandler(session.NewManager(nil)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})
	return &testServer{app: app, admin: admin, gateway: gateway, sink: events, tickets: tickets, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	if status, _ := s.do(t, http.MethodGet, "/health/live", "", ""); status != http.StatusOK {
		t.Fatalf("live: %d", status)
	}
	if status, body := s.do(t, http.MethodGet, "/health/ready", "", ""); status != http.StatusOK || body["status"] != "ready" {
		t.Fatalf("ready: %d %v", status, body)
	}
}

func TestAPIRequiresScopedToken(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/api/step-types", "", "")
	if status != http.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Fatalf("expected 401, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodGet, "/api/step-types", s.gateway, "")
	if status != http.StatusForbidden || errorCode(body) != "FORBIDDEN" {
		t.Fatalf("gateway token must not reach the admin API, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodGet, "/api/step-types", s.admin, "")
	if status != http.StatusOK {
		t.Fatalf("step types: %d %v", status, body)
	}
	if items, _ := body["data"].([]any); len(items) != 7 {
		t.Fatalf("expected seven built-in step types, got %v", body["data"])
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/nope", "", "")
	if status != http.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("expected 404, got %d %v", status, body)
	}
	if s.metrics.Snapshot()["errors"]["/nope|GET|NOT_FOUND"] != 1 {
		t.Fatalf("error not recorded: %v", s.metrics.Snapshot())
	}
}

func TestPutTicketTypeValidatesAgainstRegistry(t *testing.T) {
	s := newTestServer(t)
	path := "/api/ticket-types/" + url.PathEscape("🛠️")

	status, body := s.do(t, http.MethodPut, path, s.admin,
		`{"name":"Support","steps":[{"title":"Where","type":"teleport","options":{}}]}`)
	if status != http.StatusUnprocessableEntity || errorCode(body) != "UNKNOWN_STEP_TYPE" {
		t.Fatalf("expected unknown step type, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPut, path, s.admin,
		`{"name":"Support","steps":[{"title":"Floor","type":"integer","options":{"min":"ten"}}]}`)
	if status != http.StatusUnprocessableEntity || errorCode(body) != "INVALID_OPTIONS" {
		t.Fatalf("expected invalid options, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPut, path, s.admin,
		`{"name":"Support","steps":[{"title":"Describe","type":"string","options":{"maximumLength":100}}]}`)
	if status != http.StatusOK {
		t.Fatalf("put: %d %v", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/ticket-types", s.admin, "")
	items, _ := body["data"].([]any)
	if status != http.StatusOK || len(items) != 1 {
		t.Fatalf("list: %d %v", status, body)
	}
	if status, _ := s.do(t, http.MethodDelete, path, s.admin, ""); status != http.StatusNoContent {
		t.Fatalf("delete: %d", status)
	}
	if status, _ := s.do(t, http.MethodDelete, path, s.admin, ""); status != http.StatusNotFound {
		t.Fatalf("second delete must be not found, got %d", status)
	}
}

func TestGetTicket(t *testing.T) {
	s := newTestServer(t)
	ticket := domain.NewTicket("Printer", 7, 500)
	ticket.AddAnswer(domain.StepAnswer{Title: "Floor", Type: steptype.TypeInteger, Value: domain.IntAnswer(3)})
	if err := s.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed: %v", err)
	}

	status, body := s.do(t, http.MethodGet, "/api/tickets/500", s.admin, "")
	if status != http.StatusOK {
		t.Fatalf("get: %d %v", status, body)
	}
	data, _ := body["data"].(map[string]any)
	steps, _ := data["steps"].([]any)
	if data["status"] != "OPEN" || len(steps) != 1 {
		t.Fatalf("unexpected ticket %v", data)
	}
	if step := steps[0].(map[string]any); step["answerType"] != "integer" || step["answer"] != float64(3) {
		t.Fatalf("unexpected step %v", step)
	}

	if status, _ := s.do(t, http.MethodGet, "/api/tickets/501", s.admin, ""); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/tickets?author=x", s.admin, ""); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad author, got %d", status)
	}
	status, body = s.do(t, http.MethodGet, "/api/tickets?author=7", s.admin, "")
	if items, _ := body["data"].([]any); status != http.StatusOK || len(items) != 1 {
		t.Fatalf("list by author: %d %v", status, body)
	}
}

func TestGatewayIngress(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/gateway/messages", s.gateway,
		`{"channel":10,"message":20,"author":{"id":7,"name":"Alice"},"content":"!ticket"}`)
	if status != http.StatusAccepted || len(s.sink.messages) != 1 || s.sink.messages[0].Content != "!ticket" {
		t.Fatalf("message not delivered: %d %v", status, s.sink.messages)
	}

	status, _ = s.do(t, http.MethodPost, "/gateway/reactions", s.gateway,
		`{"channel":10,"message":20,"user":{"id":7},"emoji":"✅","action":"remove"}`)
	if status != http.StatusAccepted || len(s.sink.reactions) != 1 || s.sink.reactions[0].Added {
		t.Fatalf("reaction not delivered: %d %v", status, s.sink.reactions)
	}

	status, body := s.do(t, http.MethodPost, "/gateway/reactions", s.gateway,
		`{"channel":10,"message":20,"user":{"id":7},"emoji":"✅","action":"toggle"}`)
	if status != http.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("expected validation error, got %d %v", status, body)
	}
}

func TestSessionInspection(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/api/sessions/42", s.admin, "")
	if status != http.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("expected 404, got %d %v", status, body)
	}
}
