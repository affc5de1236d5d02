package cvs

import (
	"errors"
	"fmt"
)

var (
	// ErrPermission is returned when the caller does not own the record. It
	// never names the actual owner.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates the referenced CV does not exist.
	ErrNotFound = errors.New("cv not found")
)

// StoreError reports a failed store operation. It is surfaced as-is and never
// retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
