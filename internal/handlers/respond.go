package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"terang/internal/apperr"
)

// respondError maps a classified service error onto an HTTP response.
// Internal errors are logged and surface only a generic message.
func respondError(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		if e.Kind == apperr.Internal {
			log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(e.Kind.Status()).JSON(fiber.Map{
			"message": e.Message,
		})
	}

	log.Printf("Unclassified error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

// badRequest is a shorthand for malformed payloads caught in handlers.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
	})
}
