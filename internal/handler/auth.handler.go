// Package handler exposes the app core over HTTP for the shell. Handlers stay
// thin: decode, call the usecase, map the error.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/provider"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/routing"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/usecase"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/response"
)

// SessionAdopter installs an externally obtained session (id-token grant).
type SessionAdopter interface {
	Adopt(sess *domain.Session)
}

// IDTokenSigner trades a Google ID token for a provider session.
type IDTokenSigner interface {
	SignInWithIDToken(ctx context.Context, idProvider, idToken string) (*domain.Session, error)
}

type AuthHandler struct {
	reconciler     *usecase.AuthReconciler
	signer         IDTokenSigner
	adopter        SessionAdopter
	loginURL       string
	googleClientID string
	logger         *zap.Logger
}

func NewAuthHandler(
	reconciler *usecase.AuthReconciler,
	signer IDTokenSigner,
	adopter SessionAdopter,
	loginURL string,
	googleClientID string,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		reconciler:     reconciler,
		signer:         signer,
		adopter:        adopter,
		loginURL:       loginURL,
		googleClientID: googleClientID,
		logger:         logger,
	}
}

type stateResponse struct {
	Route                  domain.Route    `json:"route"`
	Loading                bool            `json:"loading"`
	HasSession             bool            `json:"has_session"`
	NeedsPhoneVerification bool            `json:"needs_phone_verification"`
	IsVerified             bool            `json:"is_verified"`
	IsAdmin                bool            `json:"is_admin"`
	Profile                *domain.Profile `json:"profile,omitempty"`
}

func stateView(state domain.AuthorizationState) stateResponse {
	return stateResponse{
		Route:                  routing.Route(state),
		Loading:                state.Loading,
		HasSession:             state.HasSession(),
		NeedsPhoneVerification: state.NeedsPhoneVerification,
		IsVerified:             state.IsVerified,
		IsAdmin:                state.IsAdmin,
		Profile:                state.Profile,
	}
}

// HandleState returns the current authorization snapshot and the route the
// shell must render. Never blocks on remote calls.
func (h *AuthHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, stateView(h.reconciler.Snapshot()))
}

// HandleLoginURL hands the shell the provider's OAuth entry point.
func (h *AuthHandler) HandleLoginURL(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"url": h.loginURL})
}

// HandleCallback forwards a deep-link callback URL into the capture pipeline.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		response.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := h.reconciler.HandleCallbackURL(r.Context(), req.URL); err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stateView(h.reconciler.Snapshot()))
}

// HandleGoogleSignIn verifies a native Google ID token, then exchanges it for
// a provider session.
func (h *AuthHandler) HandleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		response.Error(w, http.StatusBadRequest, "id_token is required")
		return
	}

	if _, err := provider.VerifyGoogleToken(r.Context(), req.IDToken, h.googleClientID); err != nil {
		response.Error(w, http.StatusUnauthorized, "google token rejected")
		return
	}

	sess, err := h.signer.SignInWithIDToken(r.Context(), "google", req.IDToken)
	if err != nil {
		response.FromError(w, err)
		return
	}
	h.adopter.Adopt(sess)
	response.JSON(w, http.StatusOK, stateView(h.reconciler.Snapshot()))
}

// HandleVerifyPhone checks a phone against the approved-members registry. The
// outcome is advisory; "unmatched" is a 200, not an error.
func (h *AuthHandler) HandleVerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.reconciler.VerifyPhone(r.Context(), req.Phone)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"verified": outcome.Verified(),
		"member":   outcome.Matched,
	})
}

// HandleCreateProfile completes onboarding.
func (h *AuthHandler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.reconciler.CreateProfile(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, profile)
}

// HandleUpdateProfile merges changes into the existing profile.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.reconciler.UpdateProfile(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// HandleRefreshProfile re-reads the profile from the data store.
func (h *AuthHandler) HandleRefreshProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.reconciler.RefreshProfile(r.Context()); err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stateView(h.reconciler.Snapshot()))
}

// HandleSignOut clears the session. Always succeeds from the caller's point
// of view; remote revocation runs behind it.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.reconciler.SignOut()
	response.JSON(w, http.StatusOK, stateView(h.reconciler.Snapshot()))
}
