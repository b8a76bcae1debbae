package middleware

import (
	"strings"

	"moviehub-backend/internal/auth"
	"moviehub-backend/internal/models"
	"moviehub-backend/internal/repository"
	"moviehub-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const userContextKey = "currentUser"

// Protect verifies the Bearer token and loads the authenticated user into the
// request locals. The password hash is cleared before the user is exposed.
func Protect(users repository.UserRepository, secret []byte, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authorized, no token")
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ParseToken(token, secret)
		if err != nil {
			logger.WithError(err).Warn("Authentication failed")
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authorized, token failed")
		}

		user, err := users.FindByID(c.Context(), claims.UserID)
		if err != nil {
			logger.WithError(err).WithField("user_id", claims.UserID).Warn("Token user not found")
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authorized, user not found")
		}

		user.Password = ""
		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// Authorize restricts a route to the given roles. Must run after Protect.
func Authorize(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authorized")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"User role '"+user.Role+"' is not authorized")
	}
}

// CurrentUser returns the user loaded by Protect, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userContextKey).(*models.User)
	return user
}
