package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alonebown/crewdesk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Metrics *handlers.MetricsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/tickets", cfg.Tickets.List)
	app.Get("/tickets/:id", cfg.Tickets.Detail)

	app.Get("/metrics", cfg.Metrics.Snapshot)
}
