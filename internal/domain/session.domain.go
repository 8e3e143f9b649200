package domain

import "time"

// Session is the provider-issued proof of identity. At most one session is
// current at a time; a current session always carries a non-empty UserID.
type Session struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`

	// Identity claims decoded from the access token; used to prefill the
	// profile on first sign-in.
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	GoogleSub string `json:"google_sub,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionEventType mirrors the provider's auth-change events.
type SessionEventType string

const (
	SessionSignedIn       SessionEventType = "SIGNED_IN"
	SessionSignedOut      SessionEventType = "SIGNED_OUT"
	SessionTokenRefreshed SessionEventType = "TOKEN_REFRESHED"
	SessionRestored       SessionEventType = "RESTORED"
)

type SessionEvent struct {
	Type    SessionEventType `json:"type"`
	Session *Session         `json:"session,omitempty"` // nil on sign-out
}
