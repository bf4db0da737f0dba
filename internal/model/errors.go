package model

import "fmt"

// ValidationError reports a construction-time validation failure and names
// the offending field. Arithmetic degeneracies (zero denominators, empty
// ledgers) are never ValidationErrors; they are guarded return values.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
