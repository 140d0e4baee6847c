package core

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone            ErrorCategory = iota // No error
	ErrCategoryInvalidArgument                      // Null/empty required argument
	ErrCategoryUnsupported                          // Browser runtime lacks a required feature
	ErrCategoryNotFound                             // Zero matches where exactly one was required
	ErrCategoryTimeout                              // Library load or script timed out
	ErrCategoryTypeCoercion                         // Raw script result incompatible with the requested type
	ErrCategoryScript                               // Script raised an error in the browser
	ErrCategoryConnection                           // WebDriver / DevTools endpoint unreachable
	ErrCategoryConfig                               // Invalid configuration
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryInvalidArgument:
		return "invalid_argument"
	case ErrCategoryUnsupported:
		return "unsupported"
	case ErrCategoryNotFound:
		return "not_found"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryTypeCoercion:
		return "type_coercion"
	case ErrCategoryScript:
		return "script"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
