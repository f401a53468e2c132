package conversation

import "fmt"

// PersistenceError wraps a durable-storage failure. The in-memory mutation
// that triggered the save is kept; callers surface the error and carry on.
type PersistenceError struct {
	Operation string
	Cause     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Operation, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

func NewPersistenceError(operation string, cause error) *PersistenceError {
	return &PersistenceError{Operation: operation, Cause: cause}
}

// ValidationError reports a rejected input before any mutation took place.
type ValidationError struct {
	Operation string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed in %s: %s", e.Operation, e.Message)
}

func NewValidationError(operation, message string) *ValidationError {
	return &ValidationError{Operation: operation, Message: message}
}
