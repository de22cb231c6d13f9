package social

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

type userResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayName,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	HasPassword    bool      `json:"hasPassword"`
	InviteVerified bool      `json:"inviteVerified"`
	CreatedAt      time.Time `json:"createdAt"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// socialAccountResponse deliberately omits tokens and the raw provider
// payload.
type socialAccountResponse struct {
	ID          uuid.UUID `json:"id"`
	Provider    string    `json:"provider"`
	Username    string    `json:"username,omitempty"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	ProfileURL  string    `json:"profileUrl,omitempty"`
	LastUsedAt  time.Time `json:"lastUsedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type existingUserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	HasPassword bool      `json:"hasPassword"`
}

type errorResponse struct {
	Error        string                `json:"error"`
	ExistingUser *existingUserResponse `json:"existingUser,omitempty"`
}

func toUserResponse(u *account.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.AvatarURL,
		HasPassword:    u.HasPassword,
		InviteVerified: u.InviteVerified,
		CreatedAt:      u.CreatedAt,
	}
}

func toSocialAccountResponse(a *account.SocialAccount) socialAccountResponse {
	return socialAccountResponse{
		ID:          a.ID,
		Provider:    a.Provider,
		Username:    a.ProviderUsername,
		Email:       a.ProviderEmail,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
		ProfileURL:  a.ProfileURL,
		LastUsedAt:  a.LastUsedAt,
		CreatedAt:   a.CreatedAt,
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", logger.Error(err), logger.Component("social"))
	}
}

// writeError maps the error taxonomy to HTTP statuses and stable error
// codes. Unknown errors are logged and reported as a bare internal error.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *account.EmailConflictError
	if errors.As(err, &conflict) {
		s.writeJSON(w, http.StatusConflict, errorResponse{
			Error: "email_exists",
			ExistingUser: &existingUserResponse{
				ID:          conflict.UserID,
				Email:       conflict.Email,
				HasPassword: conflict.HasPassword,
			},
		})
		return
	}

	code, status := classifyError(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "social auth request failed",
			logger.Error(err),
			logger.Component("social"),
			logger.RequestID(middleware.GetReqID(r.Context())),
		)
	}
	s.writeJSON(w, status, errorResponse{Error: code})
}

func classifyError(err error) (code string, status int) {
	switch {
	case errors.Is(err, provider.ErrProviderUnsupported):
		return "provider_unsupported", http.StatusBadRequest
	case errors.Is(err, provider.ErrMissingCredentials):
		return "missing_credentials", http.StatusBadRequest
	case errors.Is(err, provider.ErrExchangeFailed):
		return "provider_error", http.StatusBadRequest
	case errors.Is(err, provider.ErrTokenVerificationFailed):
		return "token_verification_failed", http.StatusBadRequest
	case errors.Is(err, provider.ErrNoVerifiedEmail):
		return "no_verified_email", http.StatusBadRequest
	case errors.Is(err, statestore.ErrStateExpired):
		return "state_expired", http.StatusBadRequest
	case errors.Is(err, statestore.ErrProviderMismatch):
		return "state_provider_mismatch", http.StatusBadRequest
	case errors.Is(err, statestore.ErrMetadataMismatch):
		return "state_metadata_mismatch", http.StatusBadRequest
	case errors.Is(err, statestore.ErrInvalidState):
		return "invalid_state", http.StatusBadRequest
	case errors.Is(err, account.ErrEmailNotVerified):
		return "email_not_verified", http.StatusBadRequest
	case errors.Is(err, account.ErrInviteRequired):
		return "invite_required", http.StatusBadRequest
	case errors.Is(err, account.ErrInviteInvalid):
		return "invite_invalid", http.StatusBadRequest
	case errors.Is(err, account.ErrLinkConflict):
		return "link_conflict", http.StatusBadRequest
	case errors.Is(err, account.ErrLastAuthMethod):
		return "last_auth_method", http.StatusBadRequest
	case errors.Is(err, account.ErrSocialAccountNotFound):
		return "social_account_not_found", http.StatusBadRequest
	default:
		return "internal_error", http.StatusInternalServerError
	}
}
