package responder

import "fmt"

type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeProvider ErrorType = "PROVIDER"
	ErrTypeInput    ErrorType = "INPUT"
)

type ResponderError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *ResponderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("responder %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("responder %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ResponderError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *ResponderError {
	return &ResponderError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewProviderError(operation, msg string, cause error) *ResponderError {
	return &ResponderError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}
