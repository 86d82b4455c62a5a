package core

import "errors"

// Request errors. These abort an importer call before any row is touched.
var (
	ErrMissingTable   = errors.New("missing table")
	ErrMissingPayload = errors.New("missing csv content")
	ErrUnknownTable   = errors.New("unknown table")
	ErrInvalidBody    = errors.New("invalid request body")
)

// ErrStoreUnavailable wraps failures to reach the record store at all, as
// opposed to the store rejecting a batch. Callers treat it as a hard error.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrTooManyImports is returned when all import slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// ErrRateLimited is returned when a client sends requests faster than its
// per-client limit allows. Clients should wait for Retry-After and resend.
var ErrRateLimited = errors.New("rate limit exceeded")

// IsRequestError reports whether err is caused by a malformed import request.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrMissingTable) ||
		errors.Is(err, ErrMissingPayload) ||
		errors.Is(err, ErrUnknownTable) ||
		errors.Is(err, ErrInvalidBody)
}
