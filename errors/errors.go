package errors

import "fmt"

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a scenario parameter that cannot be turned into a model.
// It is returned before any variable or constraint is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidScenario
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Input errors
var (
	ErrInvalidFieldCount = fmt.Errorf("invalid field count")
	ErrInvalidNumber     = fmt.Errorf("invalid number")
	ErrEmptyRecord       = fmt.Errorf("empty record")
	ErrInvalidScenario   = fmt.Errorf("invalid scenario")
)

// Solve outcomes other than optimal
var (
	ErrInfeasible = fmt.Errorf("model is infeasible")
	ErrUnbounded  = fmt.Errorf("model is unbounded")
	ErrSolver     = fmt.Errorf("solver failure")
	ErrNotSolved  = fmt.Errorf("model has no optimal solution to read")
)

// Run history errors
var (
	ErrRunNotFound = fmt.Errorf("run not found")
)
