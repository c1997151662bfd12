// Package apperror defines the domain error taxonomy shared by all layers.
//
// Services return these errors; the HTTP handlers translate them to status
// codes at the boundary (see handler/response.go). The sentinels below are
// matched with errors.Is, so wrapping with fmt.Errorf("...: %w", err) at any
// layer preserves the classification.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

// Machine-readable codes surfaced to clients alongside the message.
const (
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodePortfolioLimit     = "PORTFOLIO_LIMIT_REACHED"
	CodeGitHubNotConnected = "GITHUB_NOT_CONNECTED"
)

type AppError struct {
	Err     error             // sentinel classifying the error
	Message string            // human-readable message, safe for clients
	Code    string            // optional machine-readable code (e.g. PORTFOLIO_LIMIT_REACHED)
	Field   string            // optional: single field causing a validation error
	Fields  map[string]string // optional: field-keyed validation errors
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// ValidationFields bundles several per-field failures into one error so the
// client can highlight each offending input.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func Conflict(code, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Code:    code,
	}
}

// Upstream wraps a third-party API failure. The upstream message is passed
// through verbatim — callers rely on it for diagnosing deploy failures.
func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}
