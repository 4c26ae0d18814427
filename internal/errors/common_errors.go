package errors

import (
	"fmt"
	"strings"
)

// ErrorType groups failures by where they come from
type ErrorType string

const (
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError is a failure outside a single download or file read: folders,
// configuration and input checks. Op names the action that failed, e.g.
// "create folders".
type AppError struct {
	Type    ErrorType
	Op      string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Type)
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Message != "" {
			b.WriteString(": ")
		}
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates an AppError without an operation
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// FileSystemError reports a failed folder or file operation
func FileSystemError(op string, err error) *AppError {
	return &AppError{Type: ErrTypeStorage, Op: op, Cause: err}
}

// NewAppValidationError reports an input that cannot be used as is
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports a missing folder or file
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, resource+" not found", nil)
}

// NewConfigError reports an unusable setting
func NewConfigError(setting string, cause error) *AppError {
	return &AppError{Type: ErrTypeConfig, Op: setting, Message: "invalid setting", Cause: cause}
}

// TypeOf returns the ErrorType of the first typed error in err's chain, or "".
// FetchError and ReadError report network and parsing types.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Type
	}
	var fetchErr *FetchError
	if As(err, &fetchErr) {
		return ErrTypeNetwork
	}
	var readErr *ReadError
	if As(err, &readErr) {
		return ErrTypeParsing
	}
	return ""
}
