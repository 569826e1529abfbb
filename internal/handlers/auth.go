package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/config"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles credential and account routes
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login
// @Summary Exchange credentials for a token
// @Description Verifies email/password and returns a bearer token plus the account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginInput true "Credentials"
// @Success 200 {object} services.LoginResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	result, err := services.Login(h.DB, h.Cfg, body.Email, body.Password)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// Register handles POST /api/auth/register (admin only)
// @Summary Create an account
// @Description Creates an admin/staff/parent account; parent accounts must name a student UDID
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.CreateUserInput true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body services.CreateUserInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	user, err := services.CreateUser(h.DB, body)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, user, fiber.StatusCreated)
}

// ListUsers handles GET /api/auth/users (admin only)
// @Summary List accounts
// @Tags Auth
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /auth/users [get]
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := services.ListUsers(h.DB)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, users, fiber.StatusOK)
}

// UpdateUser handles PATCH /api/auth/users/:id (admin only)
// @Summary Update an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/users/{id} [patch]
func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var body services.UpdateUserInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	user, err := services.UpdateUser(h.DB, id, body)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// DeleteUser handles DELETE /api/auth/users/:id (admin only)
// @Summary Delete an account
// @Tags Auth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/users/{id} [delete]
func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := services.DeleteUser(h.DB, id); err != nil {
		return respondError(c, err)
	}
	return utils.MessageResponse(c, "User deleted successfully")
}
