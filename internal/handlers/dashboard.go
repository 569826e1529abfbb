package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/middleware"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"github.com/vexcel-trust/recordsdb/internal/utils"
	"gorm.io/gorm"
)

// DashboardHandler handles center stats and calendar events
type DashboardHandler struct {
	DB *gorm.DB
}

// GetStats handles GET /api/dashboard/stats (admin/staff)
// @Summary Center dashboard aggregates
// @Tags Dashboard
// @Produce json
// @Success 200 {object} services.CenterStats
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := services.GetCenterStats(h.DB)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, stats, fiber.StatusOK)
}

// CreateEvent handles POST /api/dashboard/events
// @Summary Create a calendar event
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param body body services.EventInput true "Event"
// @Success 201 {object} models.CalendarEvent
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /dashboard/events [post]
func (h *DashboardHandler) CreateEvent(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, types.Unauthenticated("missing credentials"))
	}

	var body services.EventInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	event, err := services.CreateEvent(h.DB, body, p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, event, fiber.StatusCreated)
}

// UpdateEvent handles PATCH /api/dashboard/events/:id
// @Summary Update a calendar event
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param body body services.EventInput true "Event"
// @Success 200 {object} models.CalendarEvent
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dashboard/events/{id} [patch]
func (h *DashboardHandler) UpdateEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var body services.EventInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	event, err := services.UpdateEvent(h.DB, id, body)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, event, fiber.StatusOK)
}

// DeleteEvent handles DELETE /api/dashboard/events/:id
// @Summary Delete a calendar event
// @Tags Dashboard
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dashboard/events/{id} [delete]
func (h *DashboardHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := services.DeleteEvent(h.DB, id); err != nil {
		return respondError(c, err)
	}
	return utils.MessageResponse(c, "Event deleted successfully")
}
