package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// RequireAgentToken guards the API with a shared secret presented by the
// dialogue layer in the X-Agent-Token header. An empty configured token
// disables the check for local development.
func RequireAgentToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}

		presented := c.Get("X-Agent-Token")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "unauthorized",
					"message": "missing or invalid agent token",
				},
			})
		}

		return c.Next()
	}
}
