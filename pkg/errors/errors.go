package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Pipeline errors
	ErrToolFailure     ErrorCode = "TOOL_FAILURE"
	ErrMappingMismatch ErrorCode = "MAPPING_MISMATCH"
	ErrTaskFailed      ErrorCode = "TASK_FAILED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrArchive    ErrorCode = "ARCHIVE"
)

// RlaError represents a structured error with code and details
type RlaError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RlaError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RlaError) Unwrap() error {
	return e.Wrapped
}

// Is matches any RlaError carrying the same code
func (e *RlaError) Is(target error) bool {
	var targetErr *RlaError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RlaError with the given code and message
func New(code ErrorCode, message string) *RlaError {
	return &RlaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RlaError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RlaError {
	return &RlaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *RlaError {
	if err == nil {
		return nil
	}
	return &RlaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RlaError {
	if err == nil {
		return nil
	}
	return &RlaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RlaError) WithDetail(key string, value interface{}) *RlaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RlaError) WithDetails(details map[string]interface{}) *RlaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode reports whether any error in err's chain has the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var rlaErr *RlaError
		if !errors.As(err, &rlaErr) {
			return false
		}
		if rlaErr.Code == code {
			return true
		}
		err = rlaErr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if err is not an RlaError
func GetErrorCode(err error) ErrorCode {
	var rlaErr *RlaError
	if errors.As(err, &rlaErr) {
		return rlaErr.Code
	}
	return ErrUnknown
}

// RootCode returns the innermost code in err's chain. Task wrappers add
// ErrTaskFailed on top of the code that actually describes the failure.
func RootCode(err error) ErrorCode {
	code := ErrUnknown
	for err != nil {
		var rlaErr *RlaError
		if !errors.As(err, &rlaErr) {
			break
		}
		code = rlaErr.Code
		err = rlaErr.Wrapped
	}
	return code
}

// GetErrorDetails returns the details of every RlaError in err's chain,
// outer values winning, or nil if there are none.
func GetErrorDetails(err error) map[string]interface{} {
	var merged map[string]interface{}
	for err != nil {
		var rlaErr *RlaError
		if !errors.As(err, &rlaErr) {
			break
		}
		for k, v := range rlaErr.Details {
			if merged == nil {
				merged = make(map[string]interface{})
			}
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
		err = rlaErr.Wrapped
	}
	return merged
}
