package ai

import "fmt"

// APIError reports that the backend responded but signaled failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ai backend error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("ai backend error (status %d): %s", e.StatusCode, e.Message)
}

// InvalidPayloadError reports that the backend returned a payload that fails
// the question-set shape check.
type InvalidPayloadError struct {
	Reason string
	cause  error
}

func (e *InvalidPayloadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid generation payload: %s: %v", e.Reason, e.cause)
	}
	return "invalid generation payload: " + e.Reason
}

func (e *InvalidPayloadError) Unwrap() error {
	return e.cause
}
