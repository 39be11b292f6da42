// Package types holds the wire envelopes shared by every API surface.
package types

// SuccessEnvelope wraps every 2xx body so clients can rely on a stable
// top-level "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the user-facing error shape. Code carries the taxonomy
// constant, Message the localized text shown to the user.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
