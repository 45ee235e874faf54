// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail    string            `json:"detail"`
	Code      string            `json:"code,omitempty"`
	Violation string            `json:"violation,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewCoded builds the envelope for a domain error with a stable code.
func NewCoded(code, violation, msg string, details map[string]string) *APIError {
	return &APIError{Detail: msg, Code: code, Violation: violation, Fields: details}
}

// NewValidation wraps multiple field errors.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{Detail: "validation error", Fields: fields}
}
