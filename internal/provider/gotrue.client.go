// Package provider wraps the remote auth service's REST surface. It issues and
// revokes opaque session tokens; everything else in the core treats those
// tokens as black boxes.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, anonKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SetSession establishes a session directly from a captured token pair. The
// access token must decode to a subject; an expired token is refreshed through
// the provider, and a rejection (tokens already consumed by the concurrent
// session-change path) surfaces as ErrInvalidTokens.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	sess, err := sessionFromAccessToken(accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		if refreshToken == "" {
			return nil, xerrors.ErrInvalidTokens
		}
		return c.RefreshSession(ctx, refreshToken)
	}
	return sess, nil
}

// RefreshSession trades a refresh token for a fresh session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return c.tokenGrant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// ExchangeCode trades a PKCE authorization code for a session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.Session, error) {
	return c.tokenGrant(ctx, "pkce", map[string]string{"auth_code": code})
}

// SignInWithIDToken exchanges a validated third-party ID token (e.g. Google)
// for a provider session.
func (c *Client) SignInWithIDToken(ctx context.Context, idProvider, idToken string) (*domain.Session, error) {
	return c.tokenGrant(ctx, "id_token", map[string]string{
		"provider": idProvider,
		"id_token": idToken,
	})
}

func (c *Client) tokenGrant(ctx context.Context, grant string, body map[string]string) (*domain.Session, error) {
	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", c.baseURL, grant)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden {
		c.logger.Debug("token grant rejected",
			zap.String("grant", grant), zap.Int("status", resp.StatusCode))
		return nil, xerrors.ErrInvalidTokens
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token grant status %d", xerrors.ErrTransport, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: decode token response: %v", xerrors.ErrTransport, err)
	}

	sess, err := sessionFromAccessToken(tr.AccessToken, tr.RefreshToken)
	if err != nil {
		return nil, err
	}
	if exp := expiryFromSeconds(time.Now(), tr.ExpiresIn); !exp.IsZero() {
		sess.ExpiresAt = exp
	}
	return sess, nil
}

// SignOut revokes the session remotely. Callers treat this as best-effort;
// local state is cleared regardless of the outcome here.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	endpoint := c.baseURL + "/auth/v1/logout"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrTransport, err)
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: logout status %d", xerrors.ErrTransport, resp.StatusCode)
	}
	return nil
}

// AuthorizeURL builds the hosted OAuth entry point the shell opens in a
// browser; the provider redirects back to redirectTo with tokens attached.
func (c *Client) AuthorizeURL(oauthProvider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", oauthProvider)
	q.Set("redirect_to", redirectTo)
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
}
