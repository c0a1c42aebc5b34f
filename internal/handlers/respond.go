package handlers

import (
	"errors"
	"fmt"
	"log"

	"pasar/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto an HTTP response with the
// machine-readable kind alongside the human-readable message.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := apperrors.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
	}

	body := fiber.Map{
		"message": message,
		"kind":    apperrors.KindOf(err),
		"error":   err.Error(),
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	return c.Status(status).JSON(body)
}

// respondValidationErrors enumerates every failing field of a request
// struct, in the same shape respondError uses for service-side
// validation failures.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"kind":    apperrors.KindValidation,
		"errors":  errorMessages,
	})
}
