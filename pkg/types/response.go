// Package types defines the JSON envelopes of the local status API. The
// status, sync-trigger, and health endpoints all reply inside these shapes so
// UI pollers can parse every response the same way.
package types

// SuccessEnvelope wraps successful payloads, such as a sync status snapshot.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a typed error code from pkg/errors.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
