package errors

import (
	"errors"
	"fmt"
)

// Common error types for the colours site
var (
	// Configuration errors
	ErrConfig = errors.New("invalid configuration")

	// Session errors
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")

	// Login flow errors
	ErrNoPendingLogin  = errors.New("no login in progress")
	ErrMissingVerifier = errors.New("missing oauth verifier")

	// Provider errors
	ErrProvider = errors.New("provider error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
