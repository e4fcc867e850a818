package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrSessionNotFound = errors.New("booking session not found")
	ErrSessionClosed   = errors.New("booking session closed")

	// ErrAvailabilityConflict marks a chosen range colliding with a known or
	// newly discovered booking.
	ErrAvailabilityConflict = errors.New("selected dates are no longer available")

	// ErrCouponInvalid covers unknown, inactive and expired codes alike.
	ErrCouponInvalid = errors.New("coupon is invalid or expired")

	// ErrExternalFetch wraps any failed read from the data-store collaborator.
	ErrExternalFetch = errors.New("failed to fetch from data store")

	// ErrCheckoutFailed wraps any failed or malformed checkout-API exchange.
	ErrCheckoutFailed = errors.New("checkout submission failed")

	ErrConfirmInProgress = errors.New("confirmation already in progress")
	ErrInvalidState      = errors.New("operation not allowed in current session state")
)

// ValidationError is a local, field-keyed validation failure. It is detected
// without any network call and only ever blocks a state transition.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
