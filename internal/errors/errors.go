package errors

import (
	"errors"
	"fmt"
)

// Common error types for the chat front-end
var (
	// Session errors
	ErrNoAccessToken = errors.New("No access token found. Please log in again.")

	// Local store errors
	ErrNotFound        = errors.New("not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrSealedStore     = errors.New("unable to open sealed store")

	// Request errors
	ErrRequestInFlight = errors.New("a request is already in progress")
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

// New is errors.New, re-exported so callers only need one errors import
func New(text string) error {
	return errors.New(text)
}
