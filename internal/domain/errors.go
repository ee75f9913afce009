package domain

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a uniqueness violation (code, hostname).
	ErrConflict = errors.New("record already exists")

	// ErrValidation wraps malformed input; the wrapped message is safe to show.
	ErrValidation = errors.New("validation failed")

	// ErrLimitExceeded indicates a quota or policy limit was reached.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrRateLimited indicates the caller exceeded a request or attempt rate.
	ErrRateLimited = errors.New("rate limited")

	ErrNotPasswordProtected = errors.New("link is not password protected")
	ErrWrongPassword        = errors.New("wrong password")
	ErrDomainNotVerified    = errors.New("domain is not verified")
)
