// Package fault defines the structured error taxonomy produced by the
// generation request gate. The gate is the single place that converts
// collaborator failures into these kinds; the session store never errors on
// missing IDs and stays outside this taxonomy.
package fault

import "fmt"

// Kind classifies a gate failure.
type Kind string

const (
	// QuotaExhausted: credit consumption failed. Blocking: the caller must
	// offer the override-credential path. Never retried automatically.
	QuotaExhausted Kind = "QUOTA_EXHAUSTED"
	// Validation: request parameters out of bounds or malformed, rejected
	// before any external call.
	Validation Kind = "VALIDATION_ERROR"
	// NoContent: neither files nor a prompt supplied, rejected before any
	// external call.
	NoContent Kind = "NO_CONTENT"
	// API: the collaborator responded but signaled failure, or its payload
	// failed the shape check.
	API Kind = "API_ERROR"
	// Network: transport failure or timeout. Eligible for user-initiated
	// retry only.
	Network Kind = "NETWORK_ERROR"
	// Unknown: anything not classified above.
	Unknown Kind = "UNKNOWN_ERROR"
)

// Fault carries a kind, a human-readable message, optional per-field
// details, and the underlying cause when one exists.
type Fault struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Fault {
	return &Fault{Kind: kind, Message: message, cause: cause}
}

// WithFields attaches per-field validation details.
func (f *Fault) WithFields(fields map[string]string) *Fault {
	f.Fields = fields
	return f
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.cause
}
