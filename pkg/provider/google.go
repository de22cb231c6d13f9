package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer      = "https://accounts.google.com"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// GoogleConfig holds configuration for the Google OAuth/OIDC provider.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
}

type googleAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client

	// ID token verification needs OIDC discovery, which is a network call.
	// The verifier is built lazily so that construction and AuthURL stay
	// pure; a failed discovery is retried on the next VerifyToken.
	mu         sync.Mutex
	idVerifier *oidc.IDTokenVerifier
}

// NewGoogleAdapter creates the Google provider adapter.
func NewGoogleAdapter(cfg GoogleConfig) Adapter {
	return &googleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the Google provider identifier.
func (a *googleAdapter) Name() string {
	return ProviderGoogle
}

// AuthURL builds the Google authorization URL with the given state token.
// The static Google endpoint keeps this free of network calls.
func (a *googleAdapter) AuthURL(state string, scopes []string) string {
	conf := a.conf
	if len(scopes) > 0 {
		c := *a.conf
		c.Scopes = scopes
		conf = &c
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for Google tokens.
func (a *googleAdapter) Exchange(ctx context.Context, code string) (Token, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %s", ErrExchangeFailed, providerErrorString(err))
	}

	return Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// VerifyToken verifies a Google-issued ID token (signature, audience,
// issuer) against the discovered JWKS and maps its claims to an Identity.
func (a *googleAdapter) VerifyToken(ctx context.Context, rawIDToken string) (Identity, error) {
	verifier, err := a.verifier(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenVerificationFailed, err)
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenVerificationFailed, err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: malformed claims: %v", ErrTokenVerificationFailed, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing sub claim", ErrTokenVerificationFailed)
	}
	if claims.Email == "" {
		return Identity{}, ErrNoVerifiedEmail
	}

	var raw json.RawMessage
	_ = idToken.Claims(&raw)

	return Identity{
		Provider:       ProviderGoogle,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		DisplayName:    claims.Name,
		AvatarURL:      claims.Picture,
		Raw:            raw,
	}, nil
}

// FetchUserInfo loads the Google profile for an access token.
func (a *googleAdapter) FetchUserInfo(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch google user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("google api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, err
	}

	var u struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Link          string `json:"link"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return Identity{}, err
	}
	if u.Email == "" {
		return Identity{}, ErrNoVerifiedEmail
	}

	return Identity{
		Provider:       ProviderGoogle,
		ProviderUserID: u.ID,
		Email:          u.Email,
		EmailVerified:  u.VerifiedEmail,
		DisplayName:    u.Name,
		AvatarURL:      u.Picture,
		ProfileURL:     u.Link,
		Raw:            json.RawMessage(body),
	}, nil
}

// Revoke invalidates the access token at Google's revocation endpoint.
func (a *googleAdapter) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke google token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google revocation returned status %d", resp.StatusCode)
	}
	return nil
}

func (a *googleAdapter) verifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.idVerifier != nil {
		return a.idVerifier, nil
	}

	oidcProvider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google oidc discovery: %w", err)
	}
	a.idVerifier = oidcProvider.Verifier(&oidc.Config{ClientID: a.conf.ClientID})
	return a.idVerifier, nil
}

// providerErrorString extracts the provider-reported error detail from an
// oauth2 exchange failure, falling back to the transport error text.
func providerErrorString(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorDescription != "" {
			return retrieveErr.ErrorCode + ": " + retrieveErr.ErrorDescription
		}
		if retrieveErr.ErrorCode != "" {
			return retrieveErr.ErrorCode
		}
	}
	return err.Error()
}

// Compile-time interface assertion
var _ Adapter = (*googleAdapter)(nil)
