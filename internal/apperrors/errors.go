// Package apperrors defines the sentinel errors shared across repositories,
// services and handlers. Callers should use errors.Is to match these values.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("uniqueness conflict")

	// Saved-movies relationship errors.
	ErrAlreadySaved = errors.New("movie already saved")
	ErrNotSaved     = errors.New("movie not saved by user")

	// Input errors.
	ErrValidation = errors.New("validation error")

	// External catalog errors.
	ErrUpstream = errors.New("upstream unavailable")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// StatusCode maps an error chain to the HTTP status the handlers respond with.
// Callers must be able to tell "does not exist anywhere" (404) apart from
// "upstream temporarily unavailable" (502) and "already saved" (409).
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrAlreadySaved),
		errors.Is(err, ErrNotSaved),
		errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrUpstream):
		return fiber.StatusBadGateway
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
