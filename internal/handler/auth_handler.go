package handler

import (
	"hotel-portfolio-api/internal/middleware"
	"hotel-portfolio-api/internal/service"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}
	if msg := validator.FirstError(&req); msg != "" {
		return apperror.BadRequest("%s", msg)
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindForbidden {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": apperror.Message(err)})
		}
		return err
	}
	return c.JSON(response)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{"user": user.ToResponse(), "role": user.Role})
}

// ChangePassword rotates the password and logs out other sessions
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}
	if msg := validator.FirstError(&req); msg != "" {
		return apperror.BadRequest("%s", msg)
	}

	if err := h.authService.ChangePassword(c.UserContext(), middleware.CurrentUser(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
