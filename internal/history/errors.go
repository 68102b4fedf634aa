package history

import (
	"fmt"
	"strings"
)

// MissingFieldError reports the first required field absent from a payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return e.Field + " is required"
}

// InvalidEnumError reports a value outside a field's allowed set.
type InvalidEnumError struct {
	Field    string
	Received string
	Allowed  []string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("%s must be %s", e.Field, humanJoin(e.Allowed))
}

// InvalidRequestError reports a structurally malformed request, such as a
// non-array sync body or a filter with zero criteria.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return e.Message
}

// StorageError wraps a persistence-layer failure. The engine does not retry;
// retry policy belongs to the storage collaborator.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage error: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func humanJoin(values []string) string {
	if len(values) < 2 {
		return strings.Join(values, "")
	}
	return strings.Join(values[:len(values)-1], ", ") + ", or " + values[len(values)-1]
}
