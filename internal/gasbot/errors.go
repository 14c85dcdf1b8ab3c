package gasbot

import (
	"fmt"
	"strings"
)

// FieldError describes one missing or malformed field in a vendor record.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Reason
}

// ValidationError is returned by Validate with the complete list of problems
// found in a record, so the sync log can carry full diagnostics instead of
// just the first failure.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

// TransformError is returned by Transform when a validated record still cannot
// be mapped, e.g. an unparseable timestamp. The orchestrator skips the record.
type TransformError struct {
	Field string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Field, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
