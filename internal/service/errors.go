package service

import (
	"errors"
	"sort"
	"strings"
)

// Authentication failure codes surfaced to clients.
const (
	CodeNoAccount       = "no_account"
	CodeInactiveAccount = "inactive_account"
	CodeTokenNotValid   = "token_not_valid"
)

var (
	ErrRoomUnavailable    = errors.New("room already booked for these dates")
	ErrRoomNotFree        = errors.New("room is not available for booking")
	ErrAlreadyCancelled   = errors.New("reservation already cancelled")
	ErrForbidden          = errors.New("forbidden")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrDefaultRoleMissing = errors.New("default role is not configured")
)

// ValidationError carries field- or parameter-level messages.  Nothing has
// been written when one is returned.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthError is a credential or token failure.  Code distinguishes the
// reason; Message is safe to show to the user.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Code + ": " + e.Message }
