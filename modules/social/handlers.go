package social

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/clientip"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

// requestMetadata binds the state token to the caller. The same values must
// be resolvable on the callback request for the binding to hold.
func requestMetadata(r *http.Request) statestore.Metadata {
	return statestore.Metadata{
		IP:        clientip.GetIP(r),
		UserAgent: r.UserAgent(),
	}
}

// handleAuthURL responds with the provider authorization URL and the issued
// state token. Scopes come from the comma-separated `scopes` query param.
func (s *Service) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	var scopes []string
	if raw := r.URL.Query().Get("scopes"); raw != "" {
		for scope := range strings.SplitSeq(raw, ",") {
			if scope = strings.TrimSpace(scope); scope != "" {
				scopes = append(scopes, scope)
			}
		}
	}

	url, state, err := s.resolver.AuthURL(r.Context(), chi.URLParam(r, "provider"), scopes, requestMetadata(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"url":   url,
		"state": state,
	})
}

type loginRequest struct {
	IDToken     string `json:"idToken,omitempty"`
	Code        string `json:"code,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	State       string `json:"state"`
	InviteCode  string `json:"inviteCode,omitempty"`
}

type loginResponse struct {
	User          userResponse          `json:"user"`
	SocialAccount socialAccountResponse `json:"socialAccount"`
	Session       *sessionResponse      `json:"session,omitempty"`
}

// handleLogin resolves a provider callback into a logged-in account: 201
// for a freshly provisioned user, 200 for an existing one.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request_body"})
		return
	}

	result, err := s.resolver.Resolve(r.Context(), account.Request{
		Provider: chi.URLParam(r, "provider"),
		State:    req.State,
		Credentials: provider.Credentials{
			IDToken:     req.IDToken,
			AccessToken: req.AccessToken,
			Code:        req.Code,
		},
		InviteCode: req.InviteCode,
		Metadata:   requestMetadata(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := loginResponse{
		User:          toUserResponse(result.User),
		SocialAccount: toSocialAccountResponse(result.SocialAccount),
	}
	if result.Session != nil {
		resp.Session = &sessionResponse{
			Token:     result.Session.Token,
			ExpiresAt: result.Session.ExpiresAt,
		}
	}

	status := http.StatusOK
	if result.IsNewUser {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, resp)
}

type linkRequest struct {
	IDToken     string `json:"idToken,omitempty"`
	Code        string `json:"code,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// handleLink attaches a provider identity to the authenticated user.
func (s *Service) handleLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request_body"})
		return
	}

	result, err := s.linker.Link(r.Context(), userID, chi.URLParam(r, "provider"), provider.Credentials{
		IDToken:     req.IDToken,
		AccessToken: req.AccessToken,
		Code:        req.Code,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"socialAccount": toSocialAccountResponse(result.SocialAccount),
		"alreadyLinked": result.AlreadyLinked,
	})
}

// handleUnlink detaches a provider identity from the authenticated user.
func (s *Service) handleUnlink(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	if err := s.linker.Unlink(r.Context(), userID, chi.URLParam(r, "provider")); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

// handleLinked lists the authenticated user's social accounts.
func (s *Service) handleLinked(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	accounts, err := s.linker.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	responses := make([]socialAccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, toSocialAccountResponse(&accounts[i]))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"socialAccounts": responses})
}
