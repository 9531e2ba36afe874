package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrForbidden indicates the operator lacks a capability.
type ErrForbidden struct {
	Capability string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("missing capability: %s", e.Capability)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		credentials *ErrInvalidCredentials
		forbidden   *ErrForbidden
		validation  *ErrValidation
	)
	switch {
	case errors.As(err, &credentials):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
