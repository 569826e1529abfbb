package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/config"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"gorm.io/gorm"
)

// HealthHandler handles the service health probe
type HealthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Health handles GET /health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
