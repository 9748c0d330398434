package middleware

import (
	"errors"
	"strings"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/service"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

var errAuthFormat = errors.New("invalid authorization format, use: Bearer <token>")

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userKey).(*model.User)
	return user
}

// BearerToken extracts the token from "Authorization: Bearer <token>". Websocket
// clients that cannot set headers pass it as ?token= instead.
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", jwt.ErrMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errAuthFormat
	}
	return parts[1], nil
}

// RequireAuth validates the JWT and loads the current user with their role.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			var appErr *apperror.Error
			if errors.As(err, &appErr) && appErr.Kind == apperror.KindInternal {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": apperror.Message(err)})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": authMessage(err)})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUserInactive):
		return "User account is inactive"
	case errors.Is(err, service.ErrSessionReplaced):
		return "Session expired (logged in on another device)"
	}
	return "Invalid or expired token"
}

// RequirePermission runs the permission check for module/action. When
// resourceParam is set, the route param of that name is checked against the
// user's access list.
func RequirePermission(perms service.PermissionService, module model.ModuleType, action model.Action, resourceParam string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var resourceID string
		if resourceParam != "" {
			resourceID = c.Params(resourceParam)
		}
		if err := perms.RequirePermission(c.UserContext(), CurrentUser(c), module, action, resourceID); err != nil {
			return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": apperror.Message(err)})
		}
		return c.Next()
	}
}

func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentUser(c).IsSuperAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: super admin only"})
		}
		return c.Next()
	}
}

// RequireInternal rejects external users (property owners).
func RequireInternal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentUser(c).IsInternal() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: internal users only"})
		}
		return c.Next()
	}
}
