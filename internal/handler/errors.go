package handler

import (
	"errors"

	"hotel-portfolio-api/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrorHandler turns errors returned by handlers into {"error": "..."} responses.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		status := apperror.HTTPStatus(err)
		if status == fiber.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("Request failed")
		}
		return c.Status(status).JSON(fiber.Map{"error": apperror.Message(err)})
	}
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid %s", name)
	}
	return id, nil
}

func invalidJSON() error {
	return apperror.BadRequest("Invalid JSON")
}
