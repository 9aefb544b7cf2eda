package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

// ErrValidation carries every field-level violation of a request.
type ErrValidation struct {
	Violations []types.FieldViolation
}

func (e *ErrValidation) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// invalidField builds a single-violation ErrValidation.
func invalidField(field, message string) *ErrValidation {
	return &ErrValidation{Violations: []types.FieldViolation{{Field: field, Message: message}}}
}

// ErrNotFound indicates the addressed resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// HTTPStatus returns the HTTP status code for err, unwrapping as needed.
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		notFound   *ErrNotFound
		conflict   *ErrEmailAlreadyExists
		invalid    *ErrInvalidCredentials
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
