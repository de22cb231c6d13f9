package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// MockStorage is a mock implementation of Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetSocialAccount(ctx context.Context, providerName, providerUserID string) (*SocialAccount, error) {
	args := m.Called(ctx, providerName, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SocialAccount), args.Error(1)
}

func (m *MockStorage) TouchSocialAccount(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockStorage) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockStorage) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateUserWithSocialAccount(ctx context.Context, user *User, socialAccount *SocialAccount, invite *InviteUsage) error {
	args := m.Called(ctx, user, socialAccount, invite)
	return args.Error(0)
}

func (m *MockStorage) MarkInviteVerified(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockLinkingStorage is a mock implementation of LinkingStorage.
type MockLinkingStorage struct {
	mock.Mock
}

func (m *MockLinkingStorage) GetSocialAccount(ctx context.Context, providerName, providerUserID string) (*SocialAccount, error) {
	args := m.Called(ctx, providerName, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SocialAccount), args.Error(1)
}

func (m *MockLinkingStorage) CreateSocialAccount(ctx context.Context, socialAccount *SocialAccount) error {
	args := m.Called(ctx, socialAccount)
	return args.Error(0)
}

func (m *MockLinkingStorage) DeleteSocialAccount(ctx context.Context, userID uuid.UUID, providerName string) error {
	args := m.Called(ctx, userID, providerName)
	return args.Error(0)
}

func (m *MockLinkingStorage) ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SocialAccount), args.Error(1)
}

func (m *MockLinkingStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// MockInviteValidator is a mock implementation of InviteValidator.
type MockInviteValidator struct {
	mock.Mock
}

func (m *MockInviteValidator) Validate(ctx context.Context, code string) (*Invite, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invite), args.Error(1)
}

// MockSessionIssuer is a mock implementation of SessionIssuer.
type MockSessionIssuer struct {
	mock.Mock
}

func (m *MockSessionIssuer) Issue(ctx context.Context, userID uuid.UUID) (*Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

// MockAdapter is a testify mock implementation of provider.Adapter.
type MockAdapter struct {
	mock.Mock

	name string
}

func (m *MockAdapter) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func (m *MockAdapter) AuthURL(state string, scopes []string) string {
	args := m.Called(state, scopes)
	return args.String(0)
}

func (m *MockAdapter) Exchange(ctx context.Context, code string) (provider.Token, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(provider.Token), args.Error(1)
}

func (m *MockAdapter) VerifyToken(ctx context.Context, rawIDToken string) (provider.Identity, error) {
	args := m.Called(ctx, rawIDToken)
	return args.Get(0).(provider.Identity), args.Error(1)
}

func (m *MockAdapter) FetchUserInfo(ctx context.Context, accessToken string) (provider.Identity, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(provider.Identity), args.Error(1)
}

func (m *MockAdapter) Revoke(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

var (
	_ Storage          = (*MockStorage)(nil)
	_ LinkingStorage   = (*MockLinkingStorage)(nil)
	_ InviteValidator  = (*MockInviteValidator)(nil)
	_ SessionIssuer    = (*MockSessionIssuer)(nil)
	_ provider.Adapter = (*MockAdapter)(nil)
)
