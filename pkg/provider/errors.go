package provider

import "errors"

var (
	// ErrProviderUnsupported is returned by Registry.Get for unknown names.
	ErrProviderUnsupported = errors.New("oauth provider not supported")

	// ErrMissingCredentials is returned when no id token, access token or
	// authorization code was supplied.
	ErrMissingCredentials = errors.New("no provider credentials supplied")

	// ErrExchangeFailed is returned when the authorization-code exchange is
	// rejected by the provider. The wrapped message carries the provider's
	// error string.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrTokenVerificationFailed is returned when an ID token fails
	// signature, audience or issuer checks, or when the provider does not
	// issue ID tokens at all.
	ErrTokenVerificationFailed = errors.New("id token verification failed")

	// ErrNoVerifiedEmail is returned when the provider profile carries no
	// verified primary email.
	ErrNoVerifiedEmail = errors.New("no verified email from provider")

	// ErrRevokeNotSupported marks providers without a revocation endpoint.
	// It is a distinct non-fatal outcome, not a failure.
	ErrRevokeNotSupported = errors.New("token revocation not supported by provider")
)
