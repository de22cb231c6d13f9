package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/sanitizer"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

// ResolverConfig controls invite enforcement for new-account provisioning.
type ResolverConfig struct {
	// InviteRequired enables invite-code gating for new accounts.
	InviteRequired bool `env:"INVITE_REQUIRED" envDefault:"true"`

	// InviteExemptFrom / InviteExemptUntil define an exemption window
	// (RFC 3339 instants) during which enforcement is suspended.
	InviteExemptFrom  time.Time `env:"INVITE_EXEMPT_FROM"`
	InviteExemptUntil time.Time `env:"INVITE_EXEMPT_UNTIL"`
}

// window returns the configured exemption window.
func (c ResolverConfig) window() ExemptionWindow {
	return ExemptionWindow{Start: c.InviteExemptFrom, End: c.InviteExemptUntil}
}

// Resolver runs the account-resolution state machine for federated logins.
type Resolver struct {
	registry *provider.Registry
	states   statestore.Store
	storage  Storage
	invites  InviteValidator
	sessions SessionIssuer
	cfg      ResolverConfig
	logger   *slog.Logger
	now      func() time.Time
}

// ResolverOption configures a Resolver during construction.
type ResolverOption func(*Resolver)

// WithLogger configures the logger for the resolver.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithSessionIssuer wires the external session-minting collaborator. When
// set, every successful resolution carries a freshly issued session.
func WithSessionIssuer(issuer SessionIssuer) ResolverOption {
	return func(r *Resolver) {
		r.sessions = issuer
	}
}

// NewResolver constructs the account resolver. The invite validator may be
// nil when invite enforcement is disabled.
func NewResolver(registry *provider.Registry, states statestore.Store, storage Storage, invites InviteValidator, cfg ResolverConfig, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: registry,
		states:   states,
		storage:  storage,
		invites:  invites,
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AuthURL issues a bound CSRF state token and builds the provider
// authorization URL for it.
func (r *Resolver) AuthURL(ctx context.Context, providerName string, scopes []string, meta statestore.Metadata) (url, state string, err error) {
	adapter, err := r.registry.Get(providerName)
	if err != nil {
		return "", "", err
	}

	state, err = r.states.Issue(ctx, adapter.Name(), meta)
	if err != nil {
		return "", "", fmt.Errorf("issue state token: %w", err)
	}

	return adapter.AuthURL(state, scopes), state, nil
}

// Resolve validates and consumes the CSRF state, acquires the normalized
// identity from the provider, and runs the resolution state machine. Steps
// execute strictly in order; every returned error is a terminal outcome for
// this attempt.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	adapter, err := r.registry.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	// State consumption happens before any provider call so a forged
	// callback never costs a network round trip. The token is spent even if
	// the rest of the attempt fails; failure domains are independent.
	if err := r.states.ValidateAndConsume(ctx, adapter.Name(), req.State, req.Metadata); err != nil {
		return nil, err
	}

	identity, err := provider.ResolveIdentity(ctx, adapter, req.Credentials)
	if err != nil {
		return nil, err
	}
	if identity.ProviderUserID == "" {
		return nil, fmt.Errorf("invalid identity from %s: missing provider user id", adapter.Name())
	}
	if !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	identity.Email = sanitizer.NormalizeEmail(identity.Email)

	// Social-account lookup runs before the email check: a user who already
	// linked this exact provider identity must never see an email conflict.
	socialAccount, err := r.storage.GetSocialAccount(ctx, identity.Provider, identity.ProviderUserID)
	if err == nil {
		return r.loginExisting(ctx, socialAccount)
	}
	if !errors.Is(err, ErrSocialAccountNotFound) {
		return nil, fmt.Errorf("look up social account: %w", err)
	}

	existing, err := r.storage.GetUserByEmail(ctx, identity.Email)
	if err == nil {
		// Merging identities is never automatic; surface the conflict with
		// enough detail for the client to offer password login or reset.
		return nil, &EmailConflictError{
			UserID:      existing.ID,
			Email:       existing.Email,
			HasPassword: existing.HasPassword,
		}
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("look up user by email: %w", err)
	}

	return r.provision(ctx, identity, req.InviteCode)
}

// loginExisting handles step 3's terminal outcome: the identity is already
// linked, touch the usage markers and log the user in.
func (r *Resolver) loginExisting(ctx context.Context, socialAccount *SocialAccount) (*Result, error) {
	now := r.now()

	// Marker updates must not block an already-resolved login.
	if err := r.storage.TouchSocialAccount(ctx, socialAccount.ID, now); err != nil {
		r.logger.ErrorContext(ctx, "failed to touch social account",
			logger.Error(err),
			logger.Component("resolver"),
			logger.Provider(socialAccount.Provider),
		)
	} else {
		socialAccount.LastUsedAt = now
	}
	if err := r.storage.UpdateLastLogin(ctx, socialAccount.UserID, now); err != nil {
		r.logger.ErrorContext(ctx, "failed to update last login",
			logger.Error(err),
			logger.UserID(socialAccount.UserID.String()),
			logger.Component("resolver"),
		)
	}

	user, err := r.storage.GetUserByID(ctx, socialAccount.UserID)
	if err != nil {
		return nil, fmt.Errorf("load social account owner: %w", err)
	}

	if err := r.applyRetroactiveExemption(ctx, user); err != nil {
		return nil, err
	}

	return r.finish(ctx, user, socialAccount, false)
}

// provision runs step 5: invite gating and the transactional creation of
// the user with its social account.
func (r *Resolver) provision(ctx context.Context, identity provider.Identity, inviteCode string) (*Result, error) {
	now := r.now()

	var invite *Invite
	inviteExempt := r.cfg.window().Active(now)
	if r.cfg.InviteRequired && !inviteExempt {
		if inviteCode == "" {
			return nil, ErrInviteRequired
		}
		validated, err := r.invites.Validate(ctx, inviteCode)
		if err != nil {
			if errors.Is(err, ErrInviteInvalid) {
				return nil, err
			}
			return nil, fmt.Errorf("validate invite code: %w", err)
		}
		invite = validated
	}

	username, err := uniqueUsername(ctx, r.storage, usernameBase(identity.Username, identity.Email))
	if err != nil {
		return nil, fmt.Errorf("generate username: %w", err)
	}

	user := &User{
		ID:          uuid.New(),
		Email:       identity.Email,
		Username:    username,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
		LastLoginAt: now,
		CreatedAt:   now,
	}

	var usage *InviteUsage
	switch {
	case invite != nil:
		user.InviteVerified = true
		user.InvitedBy = invite.IssuedBy
		user.InviteCodeUsed = &invite.Code
		usage = &InviteUsage{
			Code:     invite.Code,
			UserID:   user.ID,
			IssuedBy: invite.IssuedBy,
			UsedAt:   now,
		}
	case inviteExempt:
		// Window-exempt signups are verified but carry no provenance.
		user.InviteVerified = true
	}

	socialAccount := &SocialAccount{
		ID:               uuid.New(),
		UserID:           user.ID,
		Provider:         identity.Provider,
		ProviderUserID:   identity.ProviderUserID,
		ProviderUsername: identity.Username,
		ProviderEmail:    identity.Email,
		DisplayName:      identity.DisplayName,
		AvatarURL:        identity.AvatarURL,
		ProfileURL:       identity.ProfileURL,
		LastUsedAt:       now,
		CreatedAt:        now,
	}

	if err := r.storage.CreateUserWithSocialAccount(ctx, user, socialAccount, usage); err != nil {
		return nil, fmt.Errorf("create user with social account: %w", err)
	}

	r.logger.InfoContext(ctx, "provisioned new user from federated identity",
		logger.UserID(user.ID.String()),
		logger.Component("resolver"),
		logger.Provider(identity.Provider),
		slog.Bool("invite_exempt", inviteExempt),
	)

	return r.finish(ctx, user, socialAccount, true)
}

// applyRetroactiveExemption flips invite verification for users who predate
// an active exemption window, clearing any recorded provenance.
func (r *Resolver) applyRetroactiveExemption(ctx context.Context, user *User) error {
	if user.InviteVerified || !r.cfg.window().Active(r.now()) {
		return nil
	}

	if err := r.storage.MarkInviteVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark invite verified: %w", err)
	}
	user.InviteVerified = true
	user.InvitedBy = nil
	user.InviteCodeUsed = nil
	return nil
}

// finish issues a session when an issuer is wired and assembles the result.
func (r *Resolver) finish(ctx context.Context, user *User, socialAccount *SocialAccount, isNew bool) (*Result, error) {
	result := &Result{
		User:          user,
		SocialAccount: socialAccount,
		IsNewUser:     isNew,
	}

	if r.sessions != nil {
		session, err := r.sessions.Issue(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("issue session: %w", err)
		}
		result.Session = session
	}

	return result, nil
}
