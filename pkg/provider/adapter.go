package provider

import "context"

// Adapter abstracts provider-specific OAuth/OIDC behavior behind a minimal
// capability set. Implementations encapsulate all protocol details
// (oauth2.Config, token exchange, profile endpoints) and expose only the
// primitives the resolver and linking services need.
//
// Side effect discipline: AuthURL is pure; Exchange, FetchUserInfo,
// VerifyToken and Revoke are the only methods allowed to touch the network,
// and all of them honor context cancellation.
type Adapter interface {
	// Name returns the stable provider identifier, e.g. "google".
	Name() string

	// AuthURL builds the provider authorization URL embedding the given
	// CSRF state token and requested scopes. It never contacts the network.
	// An empty scopes slice falls back to the configured defaults.
	AuthURL(state string, scopes []string) string

	// Exchange trades an authorization code for provider tokens. On a
	// provider-reported failure it returns ErrExchangeFailed wrapped with
	// the provider's error string.
	Exchange(ctx context.Context, code string) (Token, error)

	// VerifyToken validates a signed identity token (signature, audience,
	// issuer) and returns the normalized identity. Providers that do not
	// issue ID tokens return ErrTokenVerificationFailed.
	VerifyToken(ctx context.Context, rawIDToken string) (Identity, error)

	// FetchUserInfo calls the provider profile endpoint(s) and maps the
	// response into an Identity. If no verified primary email can be
	// established it returns ErrNoVerifiedEmail rather than guessing.
	FetchUserInfo(ctx context.Context, accessToken string) (Identity, error)

	// Revoke invalidates the access token at the provider, best effort.
	// Providers without a revocation endpoint return ErrRevokeNotSupported,
	// which callers treat as a non-fatal outcome.
	Revoke(ctx context.Context, accessToken string) error
}

// Credentials carries the provider-issued material a client posts back after
// the consent flow. Exactly one acquisition path is used, checked in order:
// IDToken, AccessToken, Code.
type Credentials struct {
	IDToken     string
	AccessToken string
	Code        string
}

// ResolveIdentity runs the provider-dependent identity acquisition path
// shared by account resolution and linking: verify the ID token locally when
// one is supplied, fetch the profile directly for a bare access token, or
// exchange the authorization code first and then fetch the profile.
func ResolveIdentity(ctx context.Context, adapter Adapter, creds Credentials) (Identity, error) {
	switch {
	case creds.IDToken != "":
		return adapter.VerifyToken(ctx, creds.IDToken)
	case creds.AccessToken != "":
		return adapter.FetchUserInfo(ctx, creds.AccessToken)
	case creds.Code != "":
		tok, err := adapter.Exchange(ctx, creds.Code)
		if err != nil {
			return Identity{}, err
		}
		return adapter.FetchUserInfo(ctx, tok.AccessToken)
	default:
		return Identity{}, ErrMissingCredentials
	}
}
