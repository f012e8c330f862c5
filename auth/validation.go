package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
)

// LoginRequest carries the credentials submitted by the user.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate fails with errors.ErrValidation when either credential is missing.
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
	if err != nil {
		return errors.Join(errors.ErrValidation, err)
	}
	return nil
}
