package social_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/socialauth/modules/social"
	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

// MockResolver is a mock implementation of social.AccountResolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) AuthURL(ctx context.Context, providerName string, scopes []string, meta statestore.Metadata) (string, string, error) {
	args := m.Called(ctx, providerName, scopes, meta)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockResolver) Resolve(ctx context.Context, req account.Request) (*account.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Result), args.Error(1)
}

// MockLinker is a mock implementation of social.Linker.
type MockLinker struct {
	mock.Mock
}

func (m *MockLinker) Link(ctx context.Context, userID uuid.UUID, providerName string, creds provider.Credentials) (*account.LinkResult, error) {
	args := m.Called(ctx, userID, providerName, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.LinkResult), args.Error(1)
}

func (m *MockLinker) Unlink(ctx context.Context, userID uuid.UUID, providerName string) error {
	args := m.Called(ctx, userID, providerName)
	return args.Error(0)
}

func (m *MockLinker) List(ctx context.Context, userID uuid.UUID) ([]account.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.SocialAccount), args.Error(1)
}

var (
	_ social.AccountResolver = (*MockResolver)(nil)
	_ social.Linker          = (*MockLinker)(nil)
)
