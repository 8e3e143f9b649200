package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
)

func TestRouteSelection(t *testing.T) {
	sess := &domain.Session{UserID: "u1"}
	profile := &domain.Profile{ID: "u1", Phone: "9876543210"}

	tests := []struct {
		name  string
		state domain.AuthorizationState
		want  domain.Route
	}{
		{
			name:  "bootstrap still loading",
			state: domain.AuthorizationState{Loading: true},
			want:  domain.SplashRoute,
		},
		{
			name:  "loading wins even with a session",
			state: domain.AuthorizationState{Loading: true, User: sess, Profile: profile},
			want:  domain.SplashRoute,
		},
		{
			name:  "no session",
			state: domain.AuthorizationState{},
			want:  domain.LoginRoute,
		},
		{
			name:  "session without profile",
			state: domain.AuthorizationState{User: sess},
			want:  domain.PhoneVerificationRoute,
		},
		{
			name:  "profile with empty phone",
			state: domain.AuthorizationState{User: sess, Profile: &domain.Profile{ID: "u1", Phone: "   "}},
			want:  domain.PhoneVerificationRoute,
		},
		{
			name:  "session and complete profile",
			state: domain.AuthorizationState{User: sess, Profile: profile},
			want:  domain.MainRoute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.state))
		})
	}
}

// Identical inputs must always yield identical output.
func TestRouteIsIdempotent(t *testing.T) {
	state := domain.AuthorizationState{
		User:    &domain.Session{UserID: "u1"},
		Profile: &domain.Profile{ID: "u1", Phone: "9876543210"},
	}

	first := Route(state)
	second := Route(state)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.MainRoute, first)
}
