package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage defines the persistence operations the resolver needs. Lookups
// return ErrUserNotFound / ErrSocialAccountNotFound for absent rows.
type Storage interface {
	GetSocialAccount(ctx context.Context, providerName, providerUserID string) (*SocialAccount, error)

	// TouchSocialAccount updates the account's last-used marker.
	TouchSocialAccount(ctx context.Context, id uuid.UUID, usedAt time.Time) error

	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error

	UsernameExists(ctx context.Context, username string) (bool, error)

	// CreateUserWithSocialAccount persists the user, its social account and
	// the optional invite usage in one transaction. A crash or failure mid
	// sequence must never leave a user without its social account; the
	// invite code's use counter is incremented in the same transaction.
	CreateUserWithSocialAccount(ctx context.Context, user *User, socialAccount *SocialAccount, invite *InviteUsage) error

	// MarkInviteVerified flips the user's invite flag and clears invite
	// provenance, used for retroactive exemption.
	MarkInviteVerified(ctx context.Context, userID uuid.UUID) error
}

// LinkingStorage defines the persistence operations the linking service
// needs.
type LinkingStorage interface {
	GetSocialAccount(ctx context.Context, providerName, providerUserID string) (*SocialAccount, error)
	CreateSocialAccount(ctx context.Context, socialAccount *SocialAccount) error
	DeleteSocialAccount(ctx context.Context, userID uuid.UUID, providerName string) error
	ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]SocialAccount, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// InviteValidator is the external invite-code oracle. Validate returns
// ErrInviteInvalid for unknown, exhausted or expired codes.
type InviteValidator interface {
	Validate(ctx context.Context, code string) (*Invite, error)
}

// SessionIssuer mints a session for a resolved user. It is consumed as a
// black box after resolution succeeds.
type SessionIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID) (*Session, error)
}
