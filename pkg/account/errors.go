package account

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Lookup errors returned by Storage implementations.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrSocialAccountNotFound = errors.New("social account not found")
)

// Resolution errors.
var (
	// ErrEmailNotVerified rejects identities whose provider email is not
	// verified, before any persistence is touched.
	ErrEmailNotVerified = errors.New("provider email not verified")

	// ErrEmailExists signals that the identity's email already belongs to a
	// first-party account with a different (or no) provider identity.
	// Returned as an EmailConflictError carrying remediation detail.
	ErrEmailExists = errors.New("email already registered with different method")

	// ErrInviteRequired is returned when invite enforcement is on, no
	// exemption window is active, and no code was supplied.
	ErrInviteRequired = errors.New("invite code required")

	// ErrInviteInvalid is returned when the supplied invite code is
	// rejected by the invite oracle.
	ErrInviteInvalid = errors.New("invite code invalid")
)

// Linking errors.
var (
	// ErrLinkConflict signals the provider identity is already linked to a
	// different user.
	ErrLinkConflict = errors.New("provider identity linked to another account")

	// ErrLastAuthMethod refuses to unlink the only social account of a
	// passwordless user.
	ErrLastAuthMethod = errors.New("cannot remove last authentication method")
)

// errUsernameSpaceExhausted is an internal condition: the suffix probe
// limit was hit without finding a free username.
var errUsernameSpaceExhausted = errors.New("could not find free username")

// EmailConflictError carries enough structure for the client to offer a
// remediation path (password login, password reset) without leaking which
// provider identities exist for the email. It unwraps to ErrEmailExists.
type EmailConflictError struct {
	UserID      uuid.UUID
	Email       string
	HasPassword bool
}

func (e *EmailConflictError) Error() string {
	return fmt.Sprintf("%v: %s", ErrEmailExists, e.Email)
}

func (e *EmailConflictError) Unwrap() error {
	return ErrEmailExists
}
