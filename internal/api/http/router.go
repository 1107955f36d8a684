package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskops/helpdesk-engine/internal/api/http/handlers"
	"github.com/helpdeskops/helpdesk-engine/internal/auth"
)

// RouteConfig bundles the handlers and middleware the router needs.
type RouteConfig struct {
	Tickets *handlers.TicketsHandler
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
	Guard   *auth.AuthMiddleware
}

// RegisterRoutes mounts all HTTP endpoints.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Post("/auth/token", cfg.Auth.Token)

	tickets := api.Group("/tickets", cfg.Guard.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.GetHistory)
	tickets.Post("/:id/attempts", cfg.Tickets.RecordAttempt)
	tickets.Post("/:id/attempts/:number/feedback", cfg.Tickets.ApplyFeedback)
	tickets.Post("/:id/escalate", cfg.Tickets.Escalate)
	tickets.Post("/:id/begin-work", cfg.Tickets.BeginWork)
	tickets.Post("/:id/resolve", cfg.Tickets.Resolve)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Post("/:id/requeue", cfg.Tickets.Requeue)
}
