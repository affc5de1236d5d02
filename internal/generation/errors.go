package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneration matches every gateway failure.
	ErrGeneration = errors.New("generation failed")
	// ErrSchemaViolation means the backend answered but the output did not
	// satisfy the declared schema.
	ErrSchemaViolation = errors.New("output schema violation")
	// ErrBackendUnavailable means the backend could not be reached, failed or
	// did not answer before the timeout.
	ErrBackendUnavailable = errors.New("generation backend unavailable")
	// ErrUnknownDocType is returned for a doc type outside DocTypes.
	ErrUnknownDocType = errors.New("unknown document type")
)

// Error is the typed failure returned by the gateway.
type Error struct {
	Op    string
	Cause error
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("generation %s: %v: %v", e.Op, e.Cause, e.Err)
}

// Unwrap exposes ErrGeneration, the cause and the underlying error.
func (e *Error) Unwrap() []error {
	out := []error{ErrGeneration, e.Cause}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func schemaViolation(op string, err error) *Error {
	return &Error{Op: op, Cause: ErrSchemaViolation, Err: err}
}

func unavailable(op string, err error) *Error {
	return &Error{Op: op, Cause: ErrBackendUnavailable, Err: err}
}
