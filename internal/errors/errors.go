// Package errors provides unified error handling across pocket-meta.
//
// SYSTEM ARCHITECTURE ROLE:
// Core engine functions (scan, render, compose) are total and never fail. The only
// operations that can fail are pack registry lookups, configuration loading and the
// clipboard boundary. This package gives those failures one shape so the CLI and the
// TUI can surface them consistently without either one crashing the session.
//
// USAGE PATTERNS:
// - Create errors: NotFoundError(), ValidationError(), ConfigError()
// - Wrap errors: Wrap() to add context to an existing error
// - Check types: IsNotFound() and GetAppError()
// - Display: CLIErrorHandler / TUIErrorHandler in handlers.go
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeUnresolved   ErrorCode = "UNRESOLVED_PLACEHOLDERS"

	// Resource errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Environment errors
	ErrCodeConfig         ErrorCode = "CONFIG_ERROR"
	ErrCodeClipboard      ErrorCode = "CLIPBOARD_FAILURE"
	ErrCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrCodeCommandFailed  ErrorCode = "COMMAND_FAILED"
	ErrCodeInvalidCommand ErrorCode = "INVALID_COMMAND"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryRegistry   ErrorCategory = "registry"
	CategoryConfig     ErrorCategory = "config"
	CategoryClipboard  ErrorCategory = "clipboard"
	CategoryCommand    ErrorCategory = "command"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeUnresolved:
		return CategoryValidation, SeverityWarning
	case ErrCodeNotFound:
		return CategoryRegistry, SeverityInfo
	case ErrCodeConfig:
		return CategoryConfig, SeverityError
	case ErrCodeClipboard:
		return CategoryClipboard, SeverityWarning
	case ErrCodeCommandFailed, ErrCodeInvalidCommand:
		return CategoryCommand, SeverityError
	case ErrCodeInternalError:
		return CategorySystem, SeverityCritical
	default:
		return CategorySystem, SeverityError
	}
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// IsNotFound reports whether err is a lookup failure.
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// Common error constructors for frequently used errors
func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func UnresolvedError(names []string) *AppError {
	return NewAppError(ErrCodeUnresolved, fmt.Sprintf("%d placeholder(s) left unresolved", len(names))).
		WithContext("names", names)
}

func ConfigError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeConfig, fmt.Sprintf("Configuration failed: %s", operation))
}

func ClipboardError(err error) *AppError {
	return Wrap(err, ErrCodeClipboard, "Not copied")
}

func InvalidCommandError(command string, reason string) *AppError {
	return NewAppError(ErrCodeInvalidCommand, fmt.Sprintf("Invalid command '%s': %s", command, reason))
}
