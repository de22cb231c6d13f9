package provider

import (
	"encoding/json"
	"time"
)

// Provider identifiers used for storage keys and logging.
const (
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// Identity is the provider-agnostic view of an authenticated provider user.
// It is produced per login attempt and never persisted as-is; the resolver
// copies the fields it needs into the social account row.
type Identity struct {
	// Provider is the adapter name that produced this identity.
	Provider string

	// ProviderUserID is the provider's stable user identifier. Numeric IDs
	// (e.g. GitHub) are rendered as strings.
	ProviderUserID string

	// Email is the raw email reported by the provider. Callers normalize it
	// before any lookup or storage.
	Email string

	// EmailVerified reports whether the provider asserts ownership of Email.
	// Identities with an unverified email are rejected before resolution.
	EmailVerified bool

	// Username is the provider-side handle (GitHub login, OIDC
	// preferred_username). Optional.
	Username string

	// DisplayName is the human-readable name. Optional.
	DisplayName string

	// AvatarURL points at the provider avatar image. Optional.
	AvatarURL string

	// ProfileURL points at the public provider profile. Optional.
	ProfileURL string

	// Raw is the undecoded provider payload, kept for auditing. It is never
	// exposed over the API surface.
	Raw json.RawMessage
}

// Token is the result of an authorization-code exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
