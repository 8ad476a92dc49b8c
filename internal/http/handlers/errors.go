package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireAuthorization rejects requests that carry no Authorization header.
// The header value itself is not validated.
func RequireAuthorization() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}

// NewErrorHandler renders every unhandled error as a JSON envelope. Routing
// errors keep their status; anything else is a 500 logged through logger.
func NewErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code != fiber.StatusInternalServerError {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
