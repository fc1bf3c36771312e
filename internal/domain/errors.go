package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
//
// ErrNotFound, ErrAlreadyVerified and ErrInvalidOrExpired are expected
// verification outcomes, not failures: they are always reported to the
// caller as 4xx, never retried and never swallowed. Store and mail I/O
// errors propagate unwrapped (or as ErrDeliveryFailed) and map to 5xx.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyVerified  = errors.New("already verified")
	ErrInvalidOrExpired = errors.New("invalid or expired token")
	ErrConflict         = errors.New("conflict")
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrDeliveryFailed   = errors.New("delivery failed")
)
