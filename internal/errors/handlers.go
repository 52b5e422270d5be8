package errors

import (
	"fmt"
)

// Logger is the subset of the application logger the handlers need.
type Logger interface {
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
	log     Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, log Logger) *CLIErrorHandler {
	return &CLIErrorHandler{
		Verbose: verbose,
		log:     log,
	}
}

// HandleError logs err and returns an error carrying the display text.
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logAppError(h.log, appErr)
	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.Verbose && appErr.Details != "" {
		message = fmt.Sprintf("%s (%s)", message, appErr.Details)
	}
	if h.Verbose && appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("INFO: %s", message)
	default:
		return message
	}
}

// TUIErrorHandler handles errors for TUI interface
type TUIErrorHandler struct {
	ShowDetails bool
	log         Logger
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(showDetails bool, log Logger) *TUIErrorHandler {
	return &TUIErrorHandler{
		ShowDetails: showDetails,
		log:         log,
	}
}

// HandleError logs the error and hands it back for status display.
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logAppError(h.log, appErr)
	return appErr
}

// FormatError formats an error for the status line
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s: %s", message, appErr.Details)
	}
	return message
}

// IsSevere reports whether the error should be styled as a failure rather than a notice.
func (h *TUIErrorHandler) IsSevere(err error) bool {
	switch GetAppError(err).Severity {
	case SeverityError, SeverityCritical:
		return true
	default:
		return false
	}
}

func logAppError(log Logger, appErr *AppError) {
	if log == nil {
		return
	}
	kv := []interface{}{
		"code", appErr.Code,
		"category", appErr.Category,
		"severity", appErr.Severity,
	}
	if appErr.Cause != nil {
		kv = append(kv, "cause", appErr.Cause.Error())
	}
	for k, v := range appErr.Context {
		kv = append(kv, k, v)
	}

	switch appErr.Severity {
	case SeverityError, SeverityCritical:
		log.Error(appErr.Message, kv...)
	default:
		log.Warn(appErr.Message, kv...)
	}
}
