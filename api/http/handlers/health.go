package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/career/pkg/health"
)

// readyTimeout bounds the whole readiness report; each checker also applies
// its own.
const readyTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct{ svc health.ReadinessUseCase }

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler { return &HealthHandler{svc: svc} }

type readyResponse struct {
	Status string               `json:"status"`
	Checks []health.CheckResult `json:"checks"`
}

// Health reports that the process is serving.
// @Summary Liveness check
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Ready lists every dependency (database, document store) with its state.
// @Summary Readiness check
// @Tags    health
// @Produce json
// @Success 200 {object} handlers.readyResponse
// @Failure 503 {object} handlers.readyResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()
	rep := h.svc.Report(ctx)
	if !rep.Ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(readyResponse{Status: "not_ready", Checks: rep.Checks})
	}
	return c.Status(fiber.StatusOK).JSON(readyResponse{Status: "ready", Checks: rep.Checks})
}
