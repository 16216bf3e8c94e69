package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("access forbidden")
	ErrSecretUnavailable = errors.New("token signing secret unavailable")
)

// ValidationError reports the first rule a request value violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError describes a failed call to a downstream domain service.
// StatusCode is zero when no HTTP response was received.
type UpstreamError struct {
	Service    string
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: upstream responded %d: %s", e.Service, e.Operation, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Service, e.Operation, e.Err)
	default:
		return fmt.Sprintf("%s %s: upstream call failed", e.Service, e.Operation)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }
