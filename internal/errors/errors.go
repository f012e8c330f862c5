package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the session lifecycle
var (
	// Surfaced to the end user as text
	ErrValidation     = errors.New("missing credentials")
	ErrAuthentication = errors.New("authentication failed")
	ErrRateLimited    = errors.New("too many login attempts")

	// Operator-visible only
	ErrTokenDecode     = errors.New("token decode failed")
	ErrRefreshExpired  = errors.New("refresh token expired")
	ErrRevocation      = errors.New("token revocation failed")
	ErrSessionNotFound = errors.New("session not found")

	// Configuration
	ErrConfigRequired = errors.New("required configuration missing")
	ErrConfigInvalid  = errors.New("invalid configuration")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Join wraps cause under the sentinel kind so both match with errors.Is
func Join(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error with the given text
func New(text string) error {
	return errors.New(text)
}
