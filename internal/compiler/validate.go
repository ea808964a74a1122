package compiler

import (
	"fmt"

	"github.com/roach88/pybuild/internal/target"
)

// Validation error codes (E100-E199)
const (
	// Declaration errors (E101-E104), reported while compiling a BUILD file
	ErrInvalidName      = "E101" // name missing or malformed
	ErrUnknownKind      = "E102" // kind is not a known target type
	ErrUnknownField     = "E103" // field not accepted by the kind
	ErrInvalidFieldType = "E104" // field has the wrong CUE/YAML type

	// Declaration set errors (E105-E109)
	ErrDuplicateAddress  = "E105" // two declarations share an address
	ErrInvalidDependency = "E106" // dependency reference does not parse
	ErrInvalidSpecPath   = "E107" // BUILD file location escapes the root
)

// ValidationError represents a declaration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled declaration set.
// Returns all errors found (does not fail-fast).
//
// Per-target checks already ran in the constructors; this only covers
// properties of the set. Source existence, thrift_version and exclusives
// are left to the consumers that act on them.
func Validate(targets []*target.Target) []ValidationError {
	var errs []ValidationError

	seen := make(map[target.Address]int)
	for i, t := range targets {
		addr := t.Address()
		if first, dup := seen[addr]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("targets[%d]", i),
				Message: fmt.Sprintf("duplicate target address %s (first declared as targets[%d])", addr, first),
				Code:    ErrDuplicateAddress,
			})
			continue
		}
		seen[addr] = i
	}

	return errs
}

// CodeForField maps a CompileError field to a validation error code.
func CodeForField(field string) string {
	switch field {
	case "name":
		return ErrInvalidName
	case "kind":
		return ErrUnknownKind
	case "field":
		return ErrUnknownField
	case "type", "provides", "cue", "yaml", "thrift_version":
		return ErrInvalidFieldType
	case "address", "dependency":
		return ErrInvalidDependency
	case "spec_path":
		return ErrInvalidSpecPath
	default:
		return "E001"
	}
}
