package handler

import (
	"context"

	"hotel-portfolio-api/internal/middleware"
	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/service"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService service.UserService
	permissions service.PermissionService
}

func NewUserHandler(userService service.UserService, permissions service.PermissionService) *UserHandler {
	return &UserHandler{userService: userService, permissions: permissions}
}

// AccessChangeRequest adds or revokes ids on one module's access list.
type AccessChangeRequest struct {
	Module      model.ModuleType `json:"module" validate:"required"`
	ResourceIDs []string         `json:"resource_ids" validate:"required,min=1,dive,uuid"`
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// GetAllUsers
// GET /api/v1/users
func (h *UserHandler) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetUserByID
// GET /api/v1/users/:id
func (h *UserHandler) GetUserByID(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userService.GetUserByID(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// GetAccess returns the user's access list
// GET /api/v1/users/:id/access
func (h *UserHandler) GetAccess(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	access, err := h.permissions.GetUserAccess(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(access)
}

// AddAccess
// POST /api/v1/users/:id/access
func (h *UserHandler) AddAccess(c *fiber.Ctx) error {
	return h.changeAccess(c, h.permissions.AddAccess, "Access granted")
}

// RevokeAccess
// DELETE /api/v1/users/:id/access
func (h *UserHandler) RevokeAccess(c *fiber.Ctx) error {
	return h.changeAccess(c, h.permissions.RevokeAccess, "Access revoked")
}

type accessChange func(ctx context.Context, actor *model.User, userID uuid.UUID, module model.ModuleType, resourceIDs []string) (*model.UserAccess, error)

func (h *UserHandler) changeAccess(c *fiber.Ctx, change accessChange, message string) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req AccessChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}
	if msg := validator.FirstError(&req); msg != "" {
		return apperror.BadRequest("%s", msg)
	}

	access, err := change(c.UserContext(), middleware.CurrentUser(c), id, req.Module, req.ResourceIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": message, "data": access})
}

// ReplaceAccess overwrites the access lists after re-checking the actor's password
// PUT /api/v1/users/:id/access
func (h *UserHandler) ReplaceAccess(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.ReplaceAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}
	if msg := validator.FirstError(&req); msg != "" {
		return apperror.BadRequest("%s", msg)
	}

	access, err := h.permissions.ReplaceAccess(c.UserContext(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Access replaced", "data": access})
}
