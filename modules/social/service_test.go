package social_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/modules/social"
	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

func doJSON(t *testing.T, handler http.Handler, method, target string, body any, ctx context.Context) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "203.0.113.9:51234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleAuthURL(t *testing.T) {
	t.Parallel()

	t.Run("returns url and state", func(t *testing.T) {
		t.Parallel()

		resolver := &MockResolver{}
		resolver.On("AuthURL", mock.Anything, "google", []string{"openid", "email"},
			statestore.Metadata{IP: "203.0.113.9", UserAgent: "test-agent"}).
			Return("https://accounts.google.com/o/oauth2/auth?state=abc", "abc", nil)

		svc := social.NewService(resolver, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodGet, "/google/url?scopes=openid,email", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=abc", body["url"])
		assert.Equal(t, "abc", body["state"])
	})

	t.Run("unsupported provider", func(t *testing.T) {
		t.Parallel()

		resolver := &MockResolver{}
		resolver.On("AuthURL", mock.Anything, "unknown", mock.Anything, mock.Anything).
			Return("", "", provider.ErrProviderUnsupported)

		svc := social.NewService(resolver, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodGet, "/unknown/url", nil, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "provider_unsupported", decodeBody(t, rec)["error"])
	})
}

func TestHandleLogin(t *testing.T) {
	t.Parallel()

	newResult := func(isNew bool) *account.Result {
		userID := uuid.New()
		return &account.Result{
			User: &account.User{
				ID:       userID,
				Email:    "jane.doe@example.com",
				Username: "janedoe",
			},
			SocialAccount: &account.SocialAccount{
				ID:             uuid.New(),
				UserID:         userID,
				Provider:       "google",
				ProviderUserID: "google-user-1",
			},
			Session:   &account.Session{Token: "session-token", ExpiresAt: time.Now().Add(time.Hour)},
			IsNewUser: isNew,
		}
	}

	t.Run("new user responds 201", func(t *testing.T) {
		t.Parallel()

		resolver := &MockResolver{}
		resolver.On("Resolve", mock.Anything, mock.MatchedBy(func(req account.Request) bool {
			return req.Provider == "google" &&
				req.State == "state-token" &&
				req.Credentials.IDToken == "id-token" &&
				req.InviteCode == "WELCOME" &&
				req.Metadata.IP == "203.0.113.9"
		})).Return(newResult(true), nil)

		svc := social.NewService(resolver, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/google/login", map[string]string{
			"idToken":    "id-token",
			"state":      "state-token",
			"inviteCode": "WELCOME",
		}, nil)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		user := body["user"].(map[string]any)
		assert.Equal(t, "jane.doe@example.com", user["email"])
		session := body["session"].(map[string]any)
		assert.Equal(t, "session-token", session["token"])
	})

	t.Run("existing user responds 200", func(t *testing.T) {
		t.Parallel()

		resolver := &MockResolver{}
		resolver.On("Resolve", mock.Anything, mock.Anything).Return(newResult(false), nil)

		svc := social.NewService(resolver, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/google/login", map[string]string{
			"idToken": "id-token",
			"state":   "state-token",
		}, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("email conflict responds 409 with existing user", func(t *testing.T) {
		t.Parallel()

		existingID := uuid.New()
		resolver := &MockResolver{}
		resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, &account.EmailConflictError{
			UserID:      existingID,
			Email:       "jane.doe@example.com",
			HasPassword: true,
		})

		svc := social.NewService(resolver, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/google/login", map[string]string{
			"idToken": "id-token",
			"state":   "state-token",
		}, nil)

		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "email_exists", body["error"])
		existing := body["existingUser"].(map[string]any)
		assert.Equal(t, existingID.String(), existing["id"])
		assert.Equal(t, "jane.doe@example.com", existing["email"])
		assert.Equal(t, true, existing["hasPassword"])
		// No credential material leaks into the conflict payload.
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("state errors respond 400", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			err  error
			code string
		}{
			{statestore.ErrInvalidState, "invalid_state"},
			{statestore.ErrStateExpired, "state_expired"},
			{statestore.ErrProviderMismatch, "state_provider_mismatch"},
			{statestore.ErrMetadataMismatch, "state_metadata_mismatch"},
			{account.ErrInviteRequired, "invite_required"},
			{account.ErrInviteInvalid, "invite_invalid"},
			{account.ErrEmailNotVerified, "email_not_verified"},
			{provider.ErrTokenVerificationFailed, "token_verification_failed"},
		}

		for _, tt := range tests {
			resolver := &MockResolver{}
			resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, tt.err)

			svc := social.NewService(resolver, &MockLinker{})
			rec := doJSON(t, svc.Handle(), http.MethodPost, "/google/login", map[string]string{
				"idToken": "id-token",
				"state":   "state",
			}, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code, tt.code)
			assert.Equal(t, tt.code, decodeBody(t, rec)["error"])
		}
	})

	t.Run("malformed body responds 400", func(t *testing.T) {
		t.Parallel()

		svc := social.NewService(&MockResolver{}, &MockLinker{})

		req := httptest.NewRequest(http.MethodPost, "/google/login", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		svc.Handle().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLink(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		svc := social.NewService(&MockResolver{}, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/github/link", map[string]string{"accessToken": "tok"}, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("links and returns the account", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		linker := &MockLinker{}
		linker.On("Link", mock.Anything, userID, "github", provider.Credentials{AccessToken: "tok"}).
			Return(&account.LinkResult{
				SocialAccount: &account.SocialAccount{ID: uuid.New(), UserID: userID, Provider: "github"},
			}, nil)

		svc := social.NewService(&MockResolver{}, linker)
		ctx := social.SetUserID(context.Background(), userID)
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/github/link", map[string]string{"accessToken": "tok"}, ctx)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["alreadyLinked"])
		linked := body["socialAccount"].(map[string]any)
		assert.Equal(t, "github", linked["provider"])
	})

	t.Run("conflict responds 400", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		linker := &MockLinker{}
		linker.On("Link", mock.Anything, userID, "github", mock.Anything).Return(nil, account.ErrLinkConflict)

		svc := social.NewService(&MockResolver{}, linker)
		ctx := social.SetUserID(context.Background(), userID)
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/github/link", map[string]string{"accessToken": "tok"}, ctx)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "link_conflict", decodeBody(t, rec)["error"])
	})
}

func TestHandleUnlink(t *testing.T) {
	t.Parallel()

	t.Run("unlinks", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		linker := &MockLinker{}
		linker.On("Unlink", mock.Anything, userID, "github").Return(nil)

		svc := social.NewService(&MockResolver{}, linker)
		ctx := social.SetUserID(context.Background(), userID)
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/github/unlink", nil, ctx)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("last auth method responds 400", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		linker := &MockLinker{}
		linker.On("Unlink", mock.Anything, userID, "github").Return(account.ErrLastAuthMethod)

		svc := social.NewService(&MockResolver{}, linker)
		ctx := social.SetUserID(context.Background(), userID)
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/github/unlink", nil, ctx)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "last_auth_method", decodeBody(t, rec)["error"])
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		svc := social.NewService(&MockResolver{}, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodPost, "/github/unlink", nil, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleLinked(t *testing.T) {
	t.Parallel()

	t.Run("lists accounts without raw payloads", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		linker := &MockLinker{}
		linker.On("List", mock.Anything, userID).Return([]account.SocialAccount{
			{ID: uuid.New(), UserID: userID, Provider: "google", ProviderUserID: "google-user-1"},
			{ID: uuid.New(), UserID: userID, Provider: "github", ProviderUserID: "gh-42"},
		}, nil)

		svc := social.NewService(&MockResolver{}, linker)
		ctx := social.SetUserID(context.Background(), userID)
		rec := doJSON(t, svc.Handle(), http.MethodGet, "/linked", nil, ctx)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		accounts := body["socialAccounts"].([]any)
		assert.Len(t, accounts, 2)
		// Provider identifiers and tokens never appear in the listing.
		assert.NotContains(t, rec.Body.String(), "google-user-1")
		assert.NotContains(t, rec.Body.String(), "accessToken")
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		svc := social.NewService(&MockResolver{}, &MockLinker{})
		rec := doJSON(t, svc.Handle(), http.MethodGet, "/linked", nil, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
