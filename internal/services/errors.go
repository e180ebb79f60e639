package services

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrEventClosed   = errors.New("event is already closed")
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrUpstream      = errors.New("upstream provider call failed")
)

// ValidationError carries per-field messages for the 422 envelope.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return fmt.Sprintf("%s: %s", field, msg)
	}
	return "validation failed"
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
