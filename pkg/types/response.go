// Package types holds the wire envelopes shared by every PestiLink endpoint.
package types

// SuccessEnvelope wraps every 2xx payload under a single data key so
// clients decode all responses the same way.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Details is populated only for codes
// that permit structured context, such as stock shortfalls.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
