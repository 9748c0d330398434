package handler

import (
	"hotel-portfolio-api/internal/middleware"
	"hotel-portfolio-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PropertyHandler struct {
	properties service.PropertyService
	portfolios service.PortfolioService
	audits     service.AuditService
}

func NewPropertyHandler(properties service.PropertyService, portfolios service.PortfolioService, audits service.AuditService) *PropertyHandler {
	return &PropertyHandler{properties: properties, portfolios: portfolios, audits: audits}
}

func (h *PropertyHandler) CreatePortfolio(c *fiber.Ctx) error {
	var req service.CreatePortfolioRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}
	portfolio, err := h.portfolios.CreatePortfolio(c.UserContext(), &req, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Portfolio created", "data": portfolio})
}

func (h *PropertyHandler) GetAllPortfolios(c *fiber.Ctx) error {
	portfolios, err := h.portfolios.GetAllPortfolios(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(portfolios)
}

func (h *PropertyHandler) CreateProperty(c *fiber.Ctx) error {
	var req service.CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}
	property, err := h.properties.CreateProperty(c.UserContext(), &req, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Property created", "data": property})
}

func (h *PropertyHandler) GetAllProperties(c *fiber.Ctx) error {
	properties, err := h.properties.GetAllProperties(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(properties)
}

func (h *PropertyHandler) GetPropertyByID(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	property, err := h.properties.GetPropertyByID(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(property)
}

func (h *PropertyHandler) GetAuditByID(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	audit, err := h.audits.GetAuditByID(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(audit)
}
