// Copyright (c) 2026 Mesh Network. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the handler/service boundary — never in
// storage. It ensures that business logic only operates on semantically valid
// data, and that no malformed principal can ever be created.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/meshnetwork/mesh/internal/platform/apperr"
)

// Username and password constraints for principal creation.
const (
	UsernameMinLen = 4
	UsernameMaxLen = 16
	PasswordMinLen = 8
	PasswordMaxLen = 64
)

var (
	// usernameChars matches the allowed username alphabet.
	usernameChars = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Username fails unless the value is a valid Mesh handle.
//
// # Format
//
// 4-16 characters from [a-zA-Z0-9._], must not start or end with a dot or
// underscore, and must not contain two separators in a row.
func (v *Validator) Username(field, value string) *Validator {
	if !IsValidUsername(value) {
		v.add(field, "Must be 4-16 letters, digits, dots or underscores, with no leading, trailing or doubled separators")
	}
	return v
}

// Password fails unless the value is within the allowed length bounds.
// Any character is permitted; only length is constrained.
func (v *Validator) Password(field, value string) *Validator {
	length := utf8.RuneCountInString(value)
	if length < PasswordMinLen || length > PasswordMaxLen {
		v.add(field, fmt.Sprintf("Must be between %d and %d characters", PasswordMinLen, PasswordMaxLen))
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	lower := strings.ToLower(value)
	if !uuidRegex.MatchString(lower) {
		v.add(field, "Must be a valid UUID")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("limit", limit < 0, "Must not be negative")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}

// IsValidUsername reports whether value satisfies the Mesh handle grammar.
//
// The original grammar used lookaround assertions, which RE2 does not
// support, so the structural rules are checked explicitly.
func IsValidUsername(value string) bool {
	length := utf8.RuneCountInString(value)
	if length < UsernameMinLen || length > UsernameMaxLen {
		return false
	}
	if !usernameChars.MatchString(value) {
		return false
	}

	// No leading or trailing separator.
	if strings.HasPrefix(value, ".") || strings.HasPrefix(value, "_") {
		return false
	}
	if strings.HasSuffix(value, ".") || strings.HasSuffix(value, "_") {
		return false
	}

	// No doubled separators anywhere in the handle.
	for _, pair := range []string{"..", "__", "._", "_."} {
		if strings.Contains(value, pair) {
			return false
		}
	}

	return true
}
