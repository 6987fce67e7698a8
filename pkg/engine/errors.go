package engine

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a planning error for recovery decisions.
type ErrorClass string

const (
	// ErrorClassTransient indicates a temporary failure, typically a
	// directory query that may succeed on a later run.
	ErrorClassTransient ErrorClass = "transient"

	// ErrorClassPermanent indicates a non-recoverable error such as an
	// invalid configuration or a cancelled analysis.
	ErrorClassPermanent ErrorClass = "permanent"
)

// PlanError is a classified error with planning context. Row-recoverable
// conditions never surface as PlanError; they degrade into Error or
// best-effort UpdateUser actions instead. PlanError is reserved for
// batch-fatal conditions.
type PlanError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Object is the directory object involved, if applicable.
	Object string `json:"object,omitempty"`

	// Row is the input row index involved, or -1.
	Row int `json:"row"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	switch {
	case e.Object != "" && e.Err != nil:
		return fmt.Sprintf("[%s] %s (object=%s): %v", e.Class, e.Message, e.Object, e.Err)
	case e.Object != "":
		return fmt.Sprintf("[%s] %s (object=%s)", e.Class, e.Message, e.Object)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Class, e.Message, e.Err)
	default:
		return fmt.Sprintf("[%s] %s", e.Class, e.Message)
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *PlanError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *PlanError) Is(target error) bool {
	t, ok := target.(*PlanError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewTransientError creates a new transient error.
func NewTransientError(message string, err error) *PlanError {
	return &PlanError{Class: ErrorClassTransient, Message: message, Row: -1, Err: err}
}

// NewPermanentError creates a new permanent error.
func NewPermanentError(message string, err error) *PlanError {
	return &PlanError{Class: ErrorClassPermanent, Message: message, Row: -1, Err: err}
}

// WithCode adds an error code.
func (e *PlanError) WithCode(code string) *PlanError {
	e.Code = code
	return e
}

// WithObject adds the directory object involved.
func (e *PlanError) WithObject(object string) *PlanError {
	e.Object = object
	return e
}

// WithRow adds the input row index involved.
func (e *PlanError) WithRow(row int) *PlanError {
	e.Row = row
	return e
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	var e *PlanError
	if errors.As(err, &e) {
		return e.Class == ErrorClassTransient
	}
	return false
}

// IsPermanent reports whether err is classified as permanent.
func IsPermanent(err error) bool {
	var e *PlanError
	if errors.As(err, &e) {
		return e.Class == ErrorClassPermanent
	}
	return false
}

// Common error codes.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeCancelled  = "CANCELLED"
	ErrCodeDirectory  = "DIRECTORY_ERROR"
)
