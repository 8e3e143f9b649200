// Package routing maps authorization state to the top-level screen class.
package routing

import (
	"strings"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
)

// Route is a pure function of the state: no hidden inputs, identical states
// always yield the identical route.
func Route(state domain.AuthorizationState) domain.Route {
	switch {
	case state.Loading:
		return domain.SplashRoute
	case !state.HasSession():
		return domain.LoginRoute
	case !state.HasProfile() || strings.TrimSpace(state.Profile.Phone) == "":
		return domain.PhoneVerificationRoute
	default:
		return domain.MainRoute
	}
}
