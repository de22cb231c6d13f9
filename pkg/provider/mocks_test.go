package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAdapter is a testify mock implementation of Adapter.
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

func (m *MockAdapter) Exchange(ctx context.Context, code string) (Token, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(Token), args.Error(1)
}

func (m *MockAdapter) VerifyToken(ctx context.Context, rawIDToken string) (Identity, error) {
	args := m.Called(ctx, rawIDToken)
	return args.Get(0).(Identity), args.Error(1)
}

func (m *MockAdapter) FetchUserInfo(ctx context.Context, accessToken string) (Identity, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(Identity), args.Error(1)
}

func (m *MockAdapter) Revoke(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

var _ Adapter = (*MockAdapter)(nil)
