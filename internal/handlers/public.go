package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/utils"
	"gorm.io/gorm"
)

// PublicHandler handles the token gateway: the anonymous emergency view
// and the staff-facing link management routes.
type PublicHandler struct {
	DB *gorm.DB
}

// GetEmergencyInfo handles GET /api/emergency/:token
// @Summary Resolve a public emergency link
// @Description Anonymous; returns only the fixed emergency field set
// @Tags Public
// @Produce json
// @Param token path string true "Public link token"
// @Success 200 {object} services.EmergencyView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /emergency/{token} [get]
func (h *PublicHandler) GetEmergencyInfo(c *fiber.Ctx) error {
	view, err := services.ResolveToken(h.DB, c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// GetPublicLink handles GET /api/students/:id/public-link (admin/staff)
// @Summary Get a student's live emergency link
// @Tags Public
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} services.PublicLink
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /students/{id}/public-link [get]
func (h *PublicHandler) GetPublicLink(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := authorize(c, policy.OpTokenLinkRead, id); err != nil {
		return respondError(c, err)
	}

	link, err := services.GetPublicLink(h.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, link, fiber.StatusOK)
}

// RotatePublicToken handles POST /api/students/:id/regenerate-public-link
// @Summary Rotate a student's emergency link token
// @Description Issues a fresh token; the previous link stops working immediately
// @Tags Public
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /students/{id}/regenerate-public-link [post]
func (h *PublicHandler) RotatePublicToken(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := authorize(c, policy.OpTokenRotate, id); err != nil {
		return respondError(c, err)
	}

	token, err := services.RotatePublicToken(h.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"message": "Public emergency link regenerated successfully",
		"token":   token,
	}, fiber.StatusOK)
}
