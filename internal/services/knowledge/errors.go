package knowledge

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeConnection ErrorType = "CONNECTION"
	ErrTypeQuery      ErrorType = "QUERY"
	ErrTypeTimeout    ErrorType = "TIMEOUT"
)

type KnowledgeError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *KnowledgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("knowledge %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("knowledge %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *KnowledgeError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *KnowledgeError {
	return &KnowledgeError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewConnectionError(operation, msg string, cause error) *KnowledgeError {
	return &KnowledgeError{Type: ErrTypeConnection, Operation: operation, Message: msg, Cause: cause}
}

func NewQueryError(operation, msg string, cause error) *KnowledgeError {
	return &KnowledgeError{Type: ErrTypeQuery, Operation: operation, Message: msg, Cause: cause}
}

func NewTimeoutError(msg string, cause error) *KnowledgeError {
	return &KnowledgeError{Type: ErrTypeTimeout, Operation: "retry", Message: msg, Cause: cause}
}
