package target

import (
	"errors"
	"fmt"
)

// InvalidArgumentError is returned when a constructor rejects one of its
// shared arguments (name, spec path, dependency reference).
type InvalidArgumentError struct {
	Field   string
	Value   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsInvalidArgument reports whether err is (or wraps) an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ie *InvalidArgumentError
	return errors.As(err, &ie)
}

func invalid(field, value, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Value: value, Message: message}
}
