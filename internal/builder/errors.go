package builder

// InputError reports invalid input supplied by the caller. It is surfaced to
// clients as a GraphQL error with the BAD_USER_INPUT code.
type InputError struct {
	Message string
}

// NewInputError returns an InputError with the given message.
func NewInputError(message string) *InputError {
	return &InputError{Message: message}
}

func (e *InputError) Error() string { return e.Message }

// Extensions implements executor.ExtendedError.
func (e *InputError) Extensions() map[string]any {
	return map[string]any{"code": "BAD_USER_INPUT"}
}
