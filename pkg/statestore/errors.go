package statestore

import "errors"

var (
	// ErrInvalidState is returned when the token is unknown or was already
	// consumed.
	ErrInvalidState = errors.New("invalid or already used state token")

	// ErrStateExpired is returned when the token exists but its TTL has
	// passed. Distinct from ErrInvalidState so clients can prompt a retry.
	ErrStateExpired = errors.New("state token expired")

	// ErrProviderMismatch is returned when the token was issued for a
	// different provider than the callback claims.
	ErrProviderMismatch = errors.New("state token issued for different provider")

	// ErrMetadataMismatch is returned when bound request metadata (origin
	// IP, user agent) differs between issue and validation.
	ErrMetadataMismatch = errors.New("state token metadata mismatch")
)
