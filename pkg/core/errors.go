package core

import (
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: no_such_element, library_load_timeout, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExecutionError with the same code.
// Copies made through WithCause/WithMessage/WithDetails still match the
// predefined error they were derived from.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok || t == nil {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Argument errors
	ErrInvalidArgument = &ExecutionError{
		Category: ErrCategoryInvalidArgument,
		Code:     "invalid_argument",
		Message:  "invalid argument",
	}

	// Capability errors
	ErrSelectorNotSupported = &ExecutionError{
		Category: ErrCategoryUnsupported,
		Code:     "selector_not_supported",
		Message:  "query selector is not supported by the browser",
	}
	ErrNotInjectable = &ExecutionError{
		Category: ErrCategoryUnsupported,
		Code:     "not_injectable",
		Message:  "library cannot be injected into the page",
	}

	// Lookup errors
	ErrNoSuchElement = &ExecutionError{
		Category: ErrCategoryNotFound,
		Code:     "no_such_element",
		Message:  "no such element",
	}

	// Timeout errors
	ErrLibraryLoadTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "library_load_timeout",
		Message:  "external library did not load in time",
	}
	ErrScriptTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "script_timeout",
		Message:  "script execution timed out",
	}

	// Result errors
	ErrTypeCoercion = &ExecutionError{
		Category: ErrCategoryTypeCoercion,
		Code:     "type_coercion",
		Message:  "cannot convert script result",
	}

	// Browser errors
	ErrJavaScript = &ExecutionError{
		Category: ErrCategoryScript,
		Code:     "javascript_error",
		Message:  "script raised an error",
	}

	// Connection errors
	ErrServerUnreachable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}
	ErrNoSession = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "no_session",
		Message:  "no active session",
	}

	// Config errors
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// InvalidArgument returns an invalid-argument error naming the offending parameter.
func InvalidArgument(param, message string) *ExecutionError {
	return ErrInvalidArgument.
		WithMessage(fmt.Sprintf("invalid argument %q: %s", param, message)).
		WithDetails(map[string]interface{}{"param": param})
}

// Param returns the parameter name attached by InvalidArgument, if any.
func (e *ExecutionError) Param() string {
	p, _ := e.Details["param"].(string)
	return p
}
