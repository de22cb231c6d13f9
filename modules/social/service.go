package social

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

// AccountResolver is the login half of the module's dependencies, satisfied
// by *account.Resolver.
type AccountResolver interface {
	AuthURL(ctx context.Context, providerName string, scopes []string, meta statestore.Metadata) (url, state string, err error)
	Resolve(ctx context.Context, req account.Request) (*account.Result, error)
}

// Linker is the linking half, satisfied by *account.LinkingService.
type Linker interface {
	Link(ctx context.Context, userID uuid.UUID, providerName string, creds provider.Credentials) (*account.LinkResult, error)
	Unlink(ctx context.Context, userID uuid.UUID, providerName string) error
	List(ctx context.Context, userID uuid.UUID) ([]account.SocialAccount, error)
}

// Service serves the social login endpoints.
type Service struct {
	resolver AccountResolver
	linker   Linker
	logger   *slog.Logger
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger configures the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService constructs the HTTP service over the given resolver and linker.
func NewService(resolver AccountResolver, linker Linker, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		linker:   linker,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle builds the module router. Mount it under the desired prefix:
//
//	r.Mount("/auth/social", svc.Handle())
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/linked", s.handleLinked)
	r.Get("/{provider}/url", s.handleAuthURL)
	r.Post("/{provider}/login", s.handleLogin)
	r.Post("/{provider}/link", s.handleLink)
	r.Post("/{provider}/unlink", s.handleUnlink)

	return r
}
