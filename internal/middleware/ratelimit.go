package middleware

import (
	"time"

	"moviehub-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// GeneralLimiter bounds every client to 100 requests per 15 minutes.
func GeneralLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests,
				"Too many requests from this IP, please try again after 15 minutes")
		},
	})
}

// AuthLimiter applies a stricter 20 requests per 15 minutes to the
// register/login routes to slow down credential stuffing.
func AuthLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        20,
		Expiration: 15 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests,
				"Too many login attempts from this IP, please try again after 15 minutes")
		},
	})
}
