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
)

// LinkingService adds and removes provider identities for users that are
// already authenticated.
type LinkingService struct {
	registry *provider.Registry
	storage  LinkingStorage
	logger   *slog.Logger
	now      func() time.Time
}

// LinkingOption configures a LinkingService during construction.
type LinkingOption func(*LinkingService)

// WithLinkingLogger configures the logger for the linking service.
func WithLinkingLogger(l *slog.Logger) LinkingOption {
	return func(s *LinkingService) {
		s.logger = l
	}
}

// NewLinkingService constructs the linking service.
func NewLinkingService(registry *provider.Registry, storage LinkingStorage, opts ...LinkingOption) *LinkingService {
	s := &LinkingService{
		registry: registry,
		storage:  storage,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Link attaches the provider identity described by creds to userID. Linking
// an identity the user already owns is idempotent; an identity owned by a
// different user fails with ErrLinkConflict.
func (s *LinkingService) Link(ctx context.Context, userID uuid.UUID, providerName string, creds provider.Credentials) (*LinkResult, error) {
	adapter, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	identity, err := provider.ResolveIdentity(ctx, adapter, creds)
	if err != nil {
		return nil, err
	}
	if !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	identity.Email = sanitizer.NormalizeEmail(identity.Email)

	existing, err := s.storage.GetSocialAccount(ctx, identity.Provider, identity.ProviderUserID)
	if err == nil {
		if existing.UserID != userID {
			return nil, ErrLinkConflict
		}
		return &LinkResult{SocialAccount: existing, AlreadyLinked: true}, nil
	}
	if !errors.Is(err, ErrSocialAccountNotFound) {
		return nil, fmt.Errorf("look up social account: %w", err)
	}

	// Confirm the user exists before creating the join row.
	if _, err := s.storage.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	socialAccount := &SocialAccount{
		ID:               uuid.New(),
		UserID:           userID,
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

	if err := s.storage.CreateSocialAccount(ctx, socialAccount); err != nil {
		return nil, fmt.Errorf("link %s account: %w", identity.Provider, err)
	}

	s.logger.InfoContext(ctx, "linked provider identity",
		logger.UserID(userID.String()),
		logger.Component("linking"),
		logger.Provider(identity.Provider),
	)

	return &LinkResult{SocialAccount: socialAccount}, nil
}

// Unlink removes the user's social account for the named provider. A
// passwordless user keeps at least one social account: removing the last
// one fails with ErrLastAuthMethod and deletes nothing.
func (s *LinkingService) Unlink(ctx context.Context, userID uuid.UUID, providerName string) error {
	adapter, err := s.registry.Get(providerName)
	if err != nil {
		return err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	accounts, err := s.storage.ListSocialAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("list social accounts: %w", err)
	}

	owned := false
	for _, a := range accounts {
		if a.Provider == adapter.Name() {
			owned = true
			break
		}
	}
	if !owned {
		return ErrSocialAccountNotFound
	}

	if !user.HasPassword && len(accounts) <= 1 {
		return ErrLastAuthMethod
	}

	if err := s.storage.DeleteSocialAccount(ctx, userID, adapter.Name()); err != nil {
		return fmt.Errorf("unlink %s account: %w", adapter.Name(), err)
	}

	s.logger.InfoContext(ctx, "unlinked provider identity",
		logger.UserID(userID.String()),
		logger.Component("linking"),
		logger.Provider(adapter.Name()),
	)

	return nil
}

// List returns the user's social accounts.
func (s *LinkingService) List(ctx context.Context, userID uuid.UUID) ([]SocialAccount, error) {
	accounts, err := s.storage.ListSocialAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list social accounts: %w", err)
	}
	return accounts, nil
}
