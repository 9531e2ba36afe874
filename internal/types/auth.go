// Package types provides the request types decoded from the admin forms.
package types

import (
	"github.com/go-playground/validator/v10"
)

// LoginRequest is the sign-in form; fields are posted as log, pwd and redirect_to
// like wp-login.php.
type LoginRequest struct {
	Login      string `validate:"required,max=60"`
	Password   string `validate:"required,max=256"`
	RedirectTo string `validate:"omitempty,startswith=/"`
}

// ScreenOptionsRequest is the screen options form of the listing.
type ScreenOptionsRequest struct {
	PerPage    int    `validate:"required"`
	RedirectTo string `validate:"omitempty,startswith=/"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the ScreenOptionsRequest using the validator.
func (r *ScreenOptionsRequest) Validate() error {
	return validator.New().Struct(r)
}
