package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskops/helpdesk-engine/internal/persistence"
)

// HealthHandler reports process liveness and dependency readiness.
type HealthHandler struct {
	version  string
	postgres *persistence.Postgres
	redis    *persistence.Redis
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(version string, pg *persistence.Postgres, rd *persistence.Redis) *HealthHandler {
	return &HealthHandler{version: version, postgres: pg, redis: rd}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": h.version})
}

// Ready GET /health/ready. Postgres and Redis are both optional at runtime
// (the engine falls back to in-memory stores), so an unreachable dependency
// is reported but does not fail readiness unless it was configured.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if h.postgres != nil && h.postgres.PoolHandle() != nil {
		if err := h.postgres.PoolHandle().Ping(c.UserContext()); err != nil {
			checks["postgres"] = "unreachable"
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "in-memory"
	}

	if h.redis != nil && h.redis.Client != nil {
		if h.redis.Available(c.UserContext()) {
			checks["redis"] = "ok"
		} else {
			checks["redis"] = "in-memory"
		}
	} else {
		checks["redis"] = "in-memory"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"status": checks, "version": h.version})
}
