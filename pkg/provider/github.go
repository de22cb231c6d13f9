package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
	githubGrantURL  = "https://api.github.com/applications/%s/grant"
)

// GitHubConfig holds configuration for the GitHub OAuth provider.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GITHUB_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`
}

type githubAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGitHubAdapter creates the GitHub provider adapter.
func NewGitHubAdapter(cfg GitHubConfig) Adapter {
	return &githubAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the GitHub provider identifier.
func (a *githubAdapter) Name() string {
	return ProviderGithub
}

// AuthURL builds the GitHub authorization URL with the given state token.
func (a *githubAdapter) AuthURL(state string, scopes []string) string {
	conf := a.conf
	if len(scopes) > 0 {
		c := *a.conf
		c.Scopes = scopes
		conf = &c
	}
	return conf.AuthCodeURL(state)
}

// Exchange trades the authorization code for a GitHub access token.
func (a *githubAdapter) Exchange(ctx context.Context, code string) (Token, error) {
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

// VerifyToken always fails: GitHub's OAuth flow does not issue ID tokens.
func (a *githubAdapter) VerifyToken(ctx context.Context, rawIDToken string) (Identity, error) {
	return Identity{}, fmt.Errorf("%w: github does not issue id tokens", ErrTokenVerificationFailed)
}

// FetchUserInfo loads the GitHub profile and resolves a verified email.
// GitHub reports email verification only on the /user/emails endpoint, so a
// second call is always made. Preference order: primary verified email,
// then any verified email.
func (a *githubAdapter) FetchUserInfo(ctx context.Context, accessToken string) (Identity, error) {
	body, err := a.get(ctx, githubUserURL, accessToken)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch github user: %w", err)
	}

	var u struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		HTMLURL   string `json:"html_url"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return Identity{}, fmt.Errorf("fetch github user: %w", err)
	}

	emailsBody, err := a.get(ctx, githubEmailsURL, accessToken)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch github emails: %w", err)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.Unmarshal(emailsBody, &emails); err != nil {
		return Identity{}, fmt.Errorf("fetch github emails: %w", err)
	}

	var email string
	for _, e := range emails {
		if e.Primary && e.Verified {
			email = e.Email
			break
		}
	}
	if email == "" {
		for _, e := range emails {
			if e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return Identity{}, ErrNoVerifiedEmail
	}

	return Identity{
		Provider:       ProviderGithub,
		ProviderUserID: strconv.FormatInt(u.ID, 10),
		Email:          email,
		EmailVerified:  true,
		Username:       u.Login,
		DisplayName:    u.Name,
		AvatarURL:      u.AvatarURL,
		ProfileURL:     u.HTMLURL,
		Raw:            json.RawMessage(body),
	}, nil
}

// Revoke deletes the application grant for the token, which invalidates all
// tokens GitHub issued to this user for the application.
func (a *githubAdapter) Revoke(ctx context.Context, accessToken string) error {
	payload, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return err
	}

	url := fmt.Sprintf(githubGrantURL, a.conf.ClientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(a.conf.ClientID, a.conf.ClientSecret)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke github token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("github revocation returned status %d", resp.StatusCode)
	}
	return nil
}

func (a *githubAdapter) get(ctx context.Context, url, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Compile-time interface assertion
var _ Adapter = (*githubAdapter)(nil)
