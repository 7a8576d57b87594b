package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lyralabs/lyra-backend/internal/models"
)

// statusFor maps dispatch error codes onto HTTP statuses.
func statusFor(code models.ErrorCode) int {
	switch code {
	case models.CodeProductNotFound, models.CodeOrderNotFound:
		return fiber.StatusNotFound
	case models.CodeStoreWriteFailure:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// writeError renders a typed dispatch failure with its structured detail.
// Untyped errors stay opaque to the caller.
func writeError(c *fiber.Ctx, err error) error {
	var de *models.Error
	if errors.As(err, &de) {
		return c.Status(statusFor(de.Code)).JSON(fiber.Map{"error": de})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "internal",
			"message": "internal error",
		},
	})
}
