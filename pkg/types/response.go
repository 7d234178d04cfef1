// Package types defines the shared wire shapes for API responses.
package types

// SuccessEnvelope wraps every successful response body under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error shape. Code is a stable machine
// string, Message is safe to show to callers, and Details carries
// optional structure such as per-field validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an error key, mirroring
// SuccessEnvelope so clients can branch on the top-level field.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
