package statestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Metadata captures request attributes recorded at issue time and rechecked
// at validation time to bind the callback to its originating request.
type Metadata struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Config controls token lifetime and binding behavior for a state store.
type Config struct {
	// TTL is how long an issued token stays valid. Default 10 minutes.
	TTL time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`

	// SweepInterval is how often expired, never-validated entries are
	// removed. Must be shorter than TTL; default 1 minute. Only the memory
	// store sweeps, Redis expires keys natively.
	SweepInterval time.Duration `env:"OAUTH_STATE_SWEEP_INTERVAL" envDefault:"1m"`

	// StrictBinding fails validation when the stored entry carries metadata
	// the caller does not supply. Off by default: mobile clients change IPs
	// mid-flow, so binding stays best effort.
	StrictBinding bool `env:"OAUTH_STATE_STRICT_BINDING" envDefault:"false"`
}

// Store issues and consumes single-use CSRF state tokens.
type Store interface {
	// Issue generates a random token bound to provider and metadata and
	// stores it with the configured TTL.
	Issue(ctx context.Context, providerName string, meta Metadata) (string, error)

	// ValidateAndConsume removes the token on first sight, whether the
	// checks pass or not, then verifies provider, expiry and metadata
	// binding in that order. Consumption is atomic: concurrent calls on
	// the same token yield at most one success.
	ValidateAndConsume(ctx context.Context, providerName, token string, meta Metadata) error

	// Close releases background resources.
	Close() error
}

type entry struct {
	Provider  string    `json:"provider"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Metadata  Metadata  `json:"metadata"`
}

// check validates a consumed entry against the callback attributes.
func (e entry) check(providerName string, meta Metadata, now time.Time, strict bool) error {
	if e.Provider != providerName {
		return ErrProviderMismatch
	}
	if now.After(e.ExpiresAt) {
		return ErrStateExpired
	}
	if !matchField(e.Metadata.IP, meta.IP, strict) {
		return ErrMetadataMismatch
	}
	if !matchField(e.Metadata.UserAgent, meta.UserAgent, strict) {
		return ErrMetadataMismatch
	}
	return nil
}

// matchField compares one bound metadata field. In best-effort mode a field
// is only compared when present on both sides.
func matchField(stored, supplied string, strict bool) bool {
	if stored == "" {
		return true
	}
	if supplied == "" {
		return !strict
	}
	return stored == supplied
}

// newToken returns a 256-bit random URL-safe token.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
