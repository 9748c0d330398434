package handler

import (
	"hotel-portfolio-api/internal/middleware"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/internal/service"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PendingActionHandler struct {
	service service.PendingActionService
}

func NewPendingActionHandler(s service.PendingActionService) *PendingActionHandler {
	return &PendingActionHandler{service: s}
}

type RejectRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

// Create
// POST /api/v1/pending-actions
func (h *PendingActionHandler) Create(c *fiber.Ctx) error {
	var req service.CreatePendingActionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}
	if msg := validator.FirstError(&req); msg != "" {
		return apperror.BadRequest("%s", msg)
	}

	action, err := h.service.Create(c.UserContext(), &req, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Pending action created", "data": action})
}

// FindAll accepts status, action_type, resource_type, property_id,
// sort_by, sort_order, page and limit as query params.
// GET /api/v1/pending-actions
func (h *PendingActionHandler) FindAll(c *fiber.Ctx) error {
	var filter repository.PendingActionFilter
	if err := c.QueryParser(&filter); err != nil {
		return apperror.BadRequest("Invalid query parameters")
	}
	if raw := c.Query("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperror.BadRequest("Invalid property_id")
		}
		filter.PropertyID = &id
	}

	page, err := h.service.FindAll(c.UserContext(), middleware.CurrentUser(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// FindOne
// GET /api/v1/pending-actions/:id
func (h *PendingActionHandler) FindOne(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	action, err := h.service.FindOne(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(action)
}

// Approve
// POST /api/v1/pending-actions/:id/approve
func (h *PendingActionHandler) Approve(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	action, err := h.service.Approve(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Pending action approved", "data": action})
}

// Reject
// POST /api/v1/pending-actions/:id/reject
func (h *PendingActionHandler) Reject(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}

	action, err := h.service.Reject(c.UserContext(), id, middleware.CurrentUser(c), req.RejectionReason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Pending action rejected", "data": action})
}
