package operations

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents the type of step error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
)

// StepError is returned by Pipeline.Run when a step fails
type StepError struct {
	Type    ErrorType
	Step    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *StepError) Error() string {
	if e == nil {
		return "unknown step error"
	}
	msg := fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError reports a step whose inputs were not usable
func NewValidationError(step, message string) *StepError {
	return &StepError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
	}
}

// NewExecutionError wraps a failure raised while a step ran
func NewExecutionError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewCancellationError reports a step stopped by context cancellation
func NewCancellationError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "run was cancelled",
		Cause:   cause,
	}
}

// classify turns a step's returned error into a StepError
func classify(step string, err error) *StepError {
	var se *StepError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewCancellationError(step, err)
	}
	return NewExecutionError(step, err)
}

// IsCancellation reports whether err stopped a run because of cancellation
func IsCancellation(err error) bool {
	var se *StepError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeCancellation
	}
	return errors.Is(err, context.Canceled)
}
