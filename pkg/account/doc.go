// Package account decides what a federated identity means for the
// first-party account model: whether an inbound provider identity logs in an
// existing user, is rejected as a conflicting identity, or provisions a new
// account, and how provider identities are linked to and unlinked from
// already-authenticated users.
//
// # Resolution state machine
//
// Resolver.Resolve runs a strict sequence per login attempt: CSRF state
// consumption, identity acquisition through the provider adapter, the
// verified-email gate, the social-account lookup by (provider, provider
// user ID), the email-collision check, and finally transactional
// provisioning of a new user plus social account. The social-account lookup
// always runs before the email check so a user who already linked this
// exact provider identity never sees a false email conflict. Identity merge
// on email collision is never automatic: the caller gets a typed conflict
// carrying whether a password account exists so the client can offer a
// password login or reset instead.
//
// New-account creation is gated on invite codes. Enforcement can be off,
// suspended by a configured exemption window, or satisfied by a code the
// external invite oracle accepts; user and social account rows are written
// in one storage transaction together with any invite provenance.
//
// # Linking
//
// LinkingService adds and removes provider identities for an authenticated
// user. Linking the same identity twice is idempotent; an identity owned by
// another user is a conflict. Unlink refuses to remove the last social
// account of a passwordless user so every user keeps at least one way to
// authenticate.
//
// Persistence, invite validation and session minting are consumed through
// the Storage, InviteValidator and SessionIssuer interfaces; the package
// itself holds no state beyond configuration.
package account
