package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to one input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports rejected user input. Fields, when present, break
// the failure down per input field for API responses; Err carries the
// summary. Business downgrades are never ValidationErrors.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals that the running process is beyond recovery and should
// terminate gracefully.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks whether err, or any error it wraps, is a shutdown signal.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
