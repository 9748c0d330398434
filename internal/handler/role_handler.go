package handler

import (
	"errors"
	"strconv"

	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/internal/service"
	"hotel-portfolio-api/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RoleHandler struct {
	roleRepo    repository.RoleRepository
	permissions service.PermissionService
}

func NewRoleHandler(roleRepo repository.RoleRepository, permissions service.PermissionService) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo, permissions: permissions}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll(c.UserContext())
	if err != nil {
		return apperror.Internal(err, "Failed to fetch roles")
	}
	return c.JSON(roles)
}

// GetRoleWarnings lists configuration problems in a role's permissions
// GET /api/v1/roles/:id/warnings
func (h *RoleHandler) GetRoleWarnings(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apperror.BadRequest("Invalid id")
	}
	role, err := h.roleRepo.FindByID(c.UserContext(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Role not found")
		}
		return apperror.Internal(err, "Failed to fetch role")
	}
	return c.JSON(fiber.Map{
		"role":     role,
		"warnings": h.permissions.ValidateRoleConfiguration(role),
	})
}
