package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/aulagest/aulagest-api/internal/apperr"
)

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}

// SendDomainError maps a typed domain error to its HTTP status. Storage
// failures are reported generically so internals never leak to clients.
func SendDomainError(c *fiber.Ctx, err error) error {
	var (
		validationErr *apperr.Validation
		notFoundErr   *apperr.NotFound
		roleErr       *apperr.RoleViolation
		rangeErr      *apperr.Range
		authErr       *apperr.Authorization
		conflictErr   *apperr.Conflict
		storageErr    *apperr.Storage
	)

	switch {
	case errors.As(err, &notFoundErr):
		return SendError(c, fiber.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &validationErr):
		return SendError(c, fiber.StatusUnprocessableEntity, validationErr.Error())
	case errors.As(err, &roleErr):
		return SendError(c, fiber.StatusUnprocessableEntity, roleErr.Error())
	case errors.As(err, &rangeErr):
		return SendError(c, fiber.StatusUnprocessableEntity, rangeErr.Error())
	case errors.As(err, &authErr):
		return SendError(c, fiber.StatusForbidden, authErr.Error())
	case errors.As(err, &conflictErr):
		return SendError(c, fiber.StatusConflict, conflictErr.Error())
	case errors.As(err, &storageErr):
		return SendError(c, fiber.StatusInternalServerError, "internal error")
	default:
		return SendError(c, fiber.StatusInternalServerError, "internal error")
	}
}
