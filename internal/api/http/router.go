package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Tickets         *handlers.TicketsHandler
	Support         *handlers.SupportHandler
	Agents          *handlers.AgentsHandler
	AgentMiddleware *auth.AgentMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/support/login", cfg.Agents.Login)

	// Customer-facing; the ticket id in the emailed link is the capability.
	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddCustomerMessage)

	support := app.Group("/support", cfg.AgentMiddleware.Handle)
	support.Get("/tickets", cfg.Support.ListTickets)
	support.Get("/tickets/:id", cfg.Support.GetTicket)
	support.Post("/tickets/:id/reply", cfg.Support.Reply)
	support.Post("/tickets/:id/close", cfg.Support.CloseTicket)
	support.Post("/agents", cfg.Agents.CreateAgent)
}
