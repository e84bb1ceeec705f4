package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Gateway        *handlers.GatewayHandler
	Tickets        *handlers.TicketsHandler
	TicketTypes    *handlers.TicketTypesHandler
	Sessions       *handlers.SessionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	gateway := app.Group("/gateway", cfg.AuthMiddleware.Handle, auth.RequireScope(auth.ScopeGateway, auth.ScopeAdmin))
	gateway.Post("/messages", cfg.Gateway.Message)
	gateway.Post("/reactions", cfg.Gateway.Reaction)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireScope(auth.ScopeAdmin))
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:channel", cfg.Tickets.GetTicket)
	api.Get("/ticket-types", cfg.TicketTypes.ListTicketTypes)
	api.Put("/ticket-types/:emoji", cfg.TicketTypes.PutTicketType)
	api.Delete("/ticket-types/:emoji", cfg.TicketTypes.DeleteTicketType)
	api.Get("/step-types", cfg.TicketTypes.ListStepTypes)
	api.Get("/sessions/:channel", cfg.Sessions.GetSession)
}
