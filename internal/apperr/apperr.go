// Package apperr holds the error kinds shared by the canteen workflows and
// their mapping onto HTTP responses.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnavailable       = errors.New("item unavailable")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidInput      = errors.New("invalid input")
)

// Status returns the HTTP status for err. Unknown errors are 500.
func Status(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusConflict
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Kind is the machine readable name sent alongside the message.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return ""
	}
}

// Handler is the fiber ErrorHandler for the whole API.
func Handler(c *fiber.Ctx, err error) error {
	code := Status(err)
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
		return c.Status(code).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	body := fiber.Map{"error": err.Error()}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		body["error"] = fe.Message
	}
	if kind := Kind(err); kind != "" {
		body["kind"] = kind
	}
	return c.Status(code).JSON(body)
}
