package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

// User is the first-party account a federated identity resolves to.
type User struct {
	ID          uuid.UUID
	Email       string
	Username    string
	DisplayName string
	AvatarURL   string

	// HasPassword reports whether a password credential exists for the
	// user. The hash itself stays behind the credentials service.
	HasPassword bool

	// InviteVerified marks accounts that satisfied invite enforcement,
	// either with a code or through an exemption window.
	InviteVerified bool

	// InvitedBy and InviteCodeUsed record invite provenance when a code was
	// consumed at signup. Both are nil for exempt or unenforced signups.
	InvitedBy      *uuid.UUID
	InviteCodeUsed *string

	LastLoginAt time.Time
	CreatedAt   time.Time
}

// SocialAccount joins one user to one external provider identity.
// (Provider, ProviderUserID) is globally unique.
type SocialAccount struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Provider         string
	ProviderUserID   string
	ProviderUsername string
	ProviderEmail    string
	DisplayName      string
	AvatarURL        string
	ProfileURL       string
	LastUsedAt       time.Time
	CreatedAt        time.Time
}

// Invite is the metadata the invite oracle returns for a valid code.
type Invite struct {
	Code     string
	IssuedBy *uuid.UUID
}

// InviteUsage records which code a new user consumed, written in the same
// transaction as the user row.
type InviteUsage struct {
	Code     string
	UserID   uuid.UUID
	IssuedBy *uuid.UUID
	UsedAt   time.Time
}

// Session is the opaque result of the external session-minting collaborator.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Request carries everything a client posts back from the provider consent
// flow for one login attempt.
type Request struct {
	Provider    string
	State       string
	Credentials provider.Credentials
	InviteCode  string
	Metadata    statestore.Metadata
}

// Result is a successful resolution outcome.
type Result struct {
	User          *User
	SocialAccount *SocialAccount
	Session       *Session
	IsNewUser     bool
}

// LinkResult is a successful link outcome. AlreadyLinked reports the
// idempotent case where the identity was linked to the same user before.
type LinkResult struct {
	SocialAccount *SocialAccount
	AlreadyLinked bool
}
