package provider

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

// sessionFromAccessToken decodes the identity claims the provider embeds in
// its access tokens. The anon client holds no signing secret, so the token is
// parsed without signature verification; the provider remains the authority
// and rejects forged tokens on first use.
func sessionFromAccessToken(accessToken, refreshToken string) (*domain.Session, error) {
	tok, err := jwt.ParseString(accessToken, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, xerrors.ErrInvalidTokens
	}
	if tok.Subject() == "" {
		return nil, xerrors.ErrInvalidTokens
	}

	sess := &domain.Session{
		UserID:       tok.Subject(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    tok.Expiration(),
	}

	if email, ok := tok.PrivateClaims()["email"].(string); ok {
		sess.Email = email
	}
	if meta, ok := tok.PrivateClaims()["user_metadata"].(map[string]interface{}); ok {
		if v, ok := meta["full_name"].(string); ok {
			sess.FullName = v
		}
		if v, ok := meta["avatar_url"].(string); ok {
			sess.AvatarURL = v
		} else if v, ok := meta["picture"].(string); ok {
			sess.AvatarURL = v
		}
		if v, ok := meta["sub"].(string); ok {
			sess.GoogleSub = v
		}
	}

	return sess, nil
}

func expiryFromSeconds(now time.Time, expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(expiresIn) * time.Second)
}
