package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of pipeline error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
)

// StepError is a failure of one pipeline step. The cause stays reachable
// through errors.Is and errors.As.
type StepError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *StepError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	msg := fmt.Sprintf("%s: %s", e.Step, e.Message)
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

// NewValidationError reports a step whose inputs are missing.
func NewValidationError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: "step inputs invalid",
		Cause:   cause,
	}
}

// NewExecutionError reports a step that failed while running.
func NewExecutionError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewTimeoutError reports a step that exceeded its timeout.
func NewTimeoutError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeTimeout,
		Step:    step,
		Message: "step exceeded its timeout",
		Cause:   cause,
	}
}

// NewCancellationError reports a run cancelled before step started.
func NewCancellationError(step string, cause error) *StepError {
	return &StepError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "pipeline was cancelled",
		Cause:   cause,
	}
}

// GetErrorType returns the pipeline error type of err, or an empty string
// when err did not come from a step.
func GetErrorType(err error) ErrorType {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Type
	}
	return ""
}

// FailedStep returns the step that produced err.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
