package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/deeplink"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/usecase"
)

type nullSessions struct{}

func (nullSessions) Current() *domain.Session                         { return nil }
func (nullSessions) Subscribe(func(domain.SessionEvent)) func()       { return func() {} }
func (nullSessions) Restore(context.Context) (*domain.Session, error) { return nil, nil }
func (nullSessions) SignOut()                                         {}

type nullProfiles struct{}

func (nullProfiles) Fetch(context.Context, string) (*domain.Profile, error) { return nil, nil }
func (nullProfiles) Upsert(context.Context, string, domain.ProfileInput) (*domain.Profile, error) {
	return nil, nil
}

type nullVerifier struct{}

func (nullVerifier) Verify(context.Context, string) domain.VerificationOutcome {
	return domain.VerificationOutcome{}
}

func newTestHandler(t *testing.T) *AuthHandler {
	t.Helper()
	logger := zap.NewNop()
	capture := deeplink.NewStrategy(false, nil, nil, logger)
	rec := usecase.NewAuthReconciler(nullSessions{}, nullProfiles{}, nullVerifier{}, capture, logger)
	rec.Start(context.Background())
	t.Cleanup(rec.Close)
	return NewAuthHandler(rec, nil, nil, "https://auth.example/authorize", "client-id", logger)
}

func TestHandleStateReturnsRoute(t *testing.T) {
	h := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.HandleState(rr, httptest.NewRequest(http.MethodGet, "/api/v1/auth/state", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Status string        `json:"status"`
		Data   stateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, domain.LoginRoute, resp.Data.Route)
	assert.False(t, resp.Data.HasSession)
}

func TestHandleVerifyPhoneRejectsBadNumber(t *testing.T) {
	h := newTestHandler(t)

	body := strings.NewReader(`{"phone":"12345"}`)
	rr := httptest.NewRecorder()
	h.HandleVerifyPhone(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify-phone", body))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCreateProfileWithoutSessionIsUnauthorized(t *testing.T) {
	h := newTestHandler(t)

	body := strings.NewReader(`{"phone":"9876543210","full_name":"Asha","city":"Jabalpur"}`)
	rr := httptest.NewRecorder()
	h.HandleCreateProfile(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/profile", body))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleLoginURL(t *testing.T) {
	h := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.HandleLoginURL(rr, httptest.NewRequest(http.MethodGet, "/api/v1/auth/login-url", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "https://auth.example/authorize")
}
