package domain

// AuthorizationState is the derived, race-free view of "who is here and what
// may they see". It is a pure function of Session x Profile x in-flight status
// and the sole input to route selection.
type AuthorizationState struct {
	User                   *Session `json:"user,omitempty"`
	Profile                *Profile `json:"profile,omitempty"`
	Loading                bool     `json:"loading"`
	IsVerified             bool     `json:"is_verified"`
	IsAdmin                bool     `json:"is_admin"`
	NeedsPhoneVerification bool     `json:"needs_phone_verification"`
}

func (s AuthorizationState) HasSession() bool { return s.User != nil }

func (s AuthorizationState) HasProfile() bool { return s.Profile != nil }

// Route is the top-level screen class the shell must show.
type Route string

const (
	SplashRoute            Route = "splash"
	LoginRoute             Route = "login"
	PhoneVerificationRoute Route = "phone_verification"
	MainRoute              Route = "main"
)

// VerificationOutcome is the terminal result of one registry check. A failed
// lookup and a genuine zero-row miss are indistinguishable on purpose: registry
// outages must never block onboarding.
type VerificationOutcome struct {
	Matched *ApprovedMember `json:"matched,omitempty"`
}

func (o VerificationOutcome) Verified() bool { return o.Matched != nil }
