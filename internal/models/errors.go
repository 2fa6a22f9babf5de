package models

import "errors"

// Pipeline error taxonomy. Only ErrInvalidSession and
// ErrUpstreamUnavailable are distinguishable to the caller; everything
// else surfaces as a generic retryable reply.
var (
	ErrUpstreamTimeout     = errors.New("upstream call exceeded its time budget")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrInvalidSession      = errors.New("unknown or expired session")
)
