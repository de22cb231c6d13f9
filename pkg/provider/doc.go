// Package provider normalizes heterogeneous OAuth/OIDC login flows behind a
// single adapter contract so that account resolution and linking never deal
// with provider-specific wire formats.
//
// Each concrete adapter implements the Adapter capability set: building the
// authorization URL (pure, no network), exchanging an authorization code,
// verifying a signed ID token, fetching the user profile, and best-effort
// token revocation. The result of every identity-producing call is an
// Identity value with a provider-scoped user ID and a verified-email flag.
//
// Adapters are registered by name in a Registry:
//
//	registry := provider.NewRegistry()
//	registry.Register(provider.NewGoogleAdapter(googleCfg))
//	registry.Register(provider.NewGitHubAdapter(githubCfg))
//
//	adapter, err := registry.Get("google")
//	if err != nil {
//	    // provider.ErrProviderUnsupported
//	}
//
// Lookup is case-insensitive and registering the same name twice replaces
// the previous adapter, which keeps test doubles trivial to install.
//
// Expected provider failures are returned as package sentinels
// (ErrExchangeFailed, ErrTokenVerificationFailed, ErrNoVerifiedEmail,
// ErrRevokeNotSupported) wrapped with provider detail; adapters never panic
// on provider-reported errors.
package provider
