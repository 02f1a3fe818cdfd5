// Package apierror provides the error envelopes returned to API clients.
// Handlers never serialize raw errors; internal details (SQL, stack traces)
// stay in the logs.
package apierror

// APIError is the canonical error envelope for 4xx/5xx responses.
type APIError struct {
	Message string `json:"message"`
}

func New(msg string) *APIError {
	return &APIError{Message: msg}
}

// FieldError names one rejected input field. Field is the JSON path of the
// value, e.g. "quote.title" or "items[0].unitValue".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError wraps the field errors of a rejected payload.
type ValidationError struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func NewValidation(msg string, fields []FieldError) *ValidationError {
	if fields == nil {
		fields = []FieldError{}
	}
	return &ValidationError{Message: msg, Errors: fields}
}
