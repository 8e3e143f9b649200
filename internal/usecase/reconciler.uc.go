// Package usecase holds the application core. The reconciler derives a single
// race-free authorization state from the session store, the profile table and
// the phone registry, absorbing slow or failing remote calls without ever
// wedging routing.
package usecase

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/deeplink"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/fence"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/routing"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

// phonePattern is the 10-digit Indian mobile format the app accepts.
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// SessionSource is the session store surface the reconciler drives.
type SessionSource interface {
	Current() *domain.Session
	Subscribe(fn func(domain.SessionEvent)) func()
	Restore(ctx context.Context) (*domain.Session, error)
	SignOut()
}

// ProfileStore reads and writes the application-level member record.
type ProfileStore interface {
	Fetch(ctx context.Context, subjectID string) (*domain.Profile, error)
	Upsert(ctx context.Context, subjectID string, in domain.ProfileInput) (*domain.Profile, error)
}

// PhoneVerifier resolves a phone number against the approved-members registry.
type PhoneVerifier interface {
	Verify(ctx context.Context, phone string) domain.VerificationOutcome
}

type StateListener func(domain.AuthorizationState)

type listener struct {
	id string
	fn StateListener
}

type AuthReconciler struct {
	sessions SessionSource
	profiles ProfileStore
	verifier PhoneVerifier
	capture  deeplink.Strategy
	fence    *fence.Fence
	logger   *zap.Logger

	mu      sync.Mutex
	session *domain.Session
	profile *domain.Profile
	loading bool

	listeners []listener
	emitMu    sync.Mutex

	unsubscribe func()
}

func NewAuthReconciler(
	sessions SessionSource,
	profiles ProfileStore,
	verifier PhoneVerifier,
	capture deeplink.Strategy,
	logger *zap.Logger,
) *AuthReconciler {
	return &AuthReconciler{
		sessions: sessions,
		profiles: profiles,
		verifier: verifier,
		capture:  capture,
		fence:    fence.New(),
		logger:   logger,
		loading:  true,
	}
}

// Start subscribes to session changes and runs the cold-start bootstrap:
// restore a persisted session and load its profile. loading stays true only
// until that first session+profile resolution completes; later transitions
// never re-enter the loading gate.
func (r *AuthReconciler) Start(ctx context.Context) {
	r.unsubscribe = r.sessions.Subscribe(r.onSessionEvent)

	sess, err := r.sessions.Restore(ctx)
	if err != nil {
		r.logger.Warn("session restore failed", zap.Error(err))
	}
	if sess == nil {
		// Nothing stored: Initializing -> Unauthenticated.
		r.mu.Lock()
		r.loading = false
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.notify(snap)
	}
	// When a session was restored the store already emitted the event and
	// onSessionEvent has scheduled the profile load, which clears loading.
}

func (r *AuthReconciler) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

// Snapshot returns the current authorization state, non-blocking.
func (r *AuthReconciler) Snapshot() domain.AuthorizationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Route maps the current state to the screen class the shell must show.
func (r *AuthReconciler) Route() domain.Route {
	return routing.Route(r.Snapshot())
}

// Subscribe registers a listener for state changes. No replay; callers wanting
// the current state read Snapshot first.
func (r *AuthReconciler) Subscribe(fn StateListener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.listeners = append(r.listeners, listener{id: id, fn: fn})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// HandleCallbackURL feeds an incoming deep link through the capture strategy.
// This path races the provider's own session-change delivery; whichever
// establishes the session first wins, and a token-already-consumed rejection
// here is logged rather than surfaced because the session-change path has
// already satisfied the sign-in.
func (r *AuthReconciler) HandleCallbackURL(ctx context.Context, rawURL string) error {
	r.logger.Debug("deep link received", zap.String("url", rawURL))

	if _, err := r.capture.Capture(ctx, rawURL); err != nil {
		if err == xerrors.ErrInvalidTokens {
			r.logger.Info("deep link tokens rejected; session-change path is authoritative")
			return nil
		}
		return err
	}
	return nil
}

// VerifyPhone checks the submitted phone against the approved-members
// registry. The outcome is advisory and never an error: registry failures mean
// "continue unverified". A result that has been superseded by a newer attempt
// or an identity change is discarded with ErrStaleResult.
func (r *AuthReconciler) VerifyPhone(ctx context.Context, phone string) (domain.VerificationOutcome, error) {
	clean := strings.TrimSpace(phone)
	if !phonePattern.MatchString(clean) {
		return domain.VerificationOutcome{}, xerrors.NewValidation("phone", xerrors.ErrInvalidPhone)
	}

	requestID := r.fence.NewAttempt()
	outcome := r.verifier.Verify(ctx, clean)

	if !r.fence.IsCurrent(requestID) {
		r.logger.Debug("stale verification response discarded", zap.Uint64("request_id", requestID))
		return domain.VerificationOutcome{}, xerrors.ErrStaleResult
	}
	return outcome, nil
}

// CreateProfile completes onboarding: it persists the profile and, on success,
// adopts the returned row (AwaitingProfile -> Ready). Identity fields missing
// from the input are filled from the session's token claims.
func (r *AuthReconciler) CreateProfile(ctx context.Context, in domain.ProfileInput) (*domain.Profile, error) {
	r.mu.Lock()
	sess := r.session
	r.mu.Unlock()
	if sess == nil {
		return nil, xerrors.ErrNoSession
	}

	if strings.TrimSpace(in.FullName) == "" {
		return nil, xerrors.NewValidation("full_name", xerrors.ErrFullNameRequired)
	}
	if strings.TrimSpace(in.City) == "" {
		return nil, xerrors.NewValidation("city", xerrors.ErrCityRequired)
	}
	if in.Email == nil && sess.Email != "" {
		in.Email = &sess.Email
	}
	if in.GoogleID == nil && sess.GoogleSub != "" {
		in.GoogleID = &sess.GoogleSub
	}
	if in.PhotoURL == nil && sess.AvatarURL != "" {
		in.PhotoURL = &sess.AvatarURL
	}

	requestID := r.fence.NewAttempt()
	profile, err := r.profiles.Upsert(ctx, sess.UserID, in)
	if err != nil {
		return nil, err
	}

	if !r.applyFenced(requestID, "create_profile", func() {
		r.profile = profile
	}) {
		return nil, xerrors.ErrStaleResult
	}
	return profile, nil
}

// UpdateProfile merges changes into the existing profile via the same upsert
// path. Requires a completed profile.
func (r *AuthReconciler) UpdateProfile(ctx context.Context, in domain.ProfileInput) (*domain.Profile, error) {
	r.mu.Lock()
	sess, current := r.session, r.profile
	r.mu.Unlock()
	if sess == nil {
		return nil, xerrors.ErrNoSession
	}
	if current == nil {
		return nil, xerrors.ErrNoProfile
	}

	merged := mergeProfileInput(current, in)

	requestID := r.fence.NewAttempt()
	profile, err := r.profiles.Upsert(ctx, sess.UserID, merged)
	if err != nil {
		return nil, err
	}

	if !r.applyFenced(requestID, "update_profile", func() {
		r.profile = profile
	}) {
		return nil, xerrors.ErrStaleResult
	}
	return profile, nil
}

// RefreshProfile re-reads the profile for the current subject, fenced like any
// other async result.
func (r *AuthReconciler) RefreshProfile(ctx context.Context) error {
	r.mu.Lock()
	sess := r.session
	r.mu.Unlock()
	if sess == nil {
		return xerrors.ErrNoSession
	}

	requestID := r.fence.NewAttempt()
	profile, err := r.profiles.Fetch(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if !r.applyFenced(requestID, "refresh_profile", func() {
		r.profile = profile
	}) {
		return xerrors.ErrStaleResult
	}
	return nil
}

// SignOut clears local state synchronously; remote revocation and storage
// cleanup run behind it as best-effort side effects. In-flight async results
// are invalidated unconditionally.
func (r *AuthReconciler) SignOut() {
	r.fence.NewAttempt()
	r.sessions.SignOut()
}

// onSessionEvent is invoked by the session store in emission order.
func (r *AuthReconciler) onSessionEvent(ev domain.SessionEvent) {
	switch ev.Type {
	case domain.SessionSignedOut:
		r.fence.NewAttempt()
		r.mu.Lock()
		// Session and profile clear atomically: no observer may see a profile
		// without a session.
		r.session = nil
		r.profile = nil
		r.loading = false
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.notify(snap)

	case domain.SessionSignedIn, domain.SessionRestored, domain.SessionTokenRefreshed:
		if ev.Session == nil {
			return
		}
		r.mu.Lock()
		sameUser := r.session != nil && r.session.UserID == ev.Session.UserID
		r.session = ev.Session
		haveProfile := r.profile != nil && r.profile.ID == ev.Session.UserID
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.notify(snap)

		if ev.Type == domain.SessionTokenRefreshed && sameUser {
			return
		}
		if !haveProfile {
			r.loadProfileAsync(ev.Session.UserID)
		}
	}
}

// loadProfileAsync fetches the profile off the event path. A transport failure
// leaves the profile unset (the phone-verification screen lets the user retry)
// rather than crashing routing; the fetch result is fenced against sign-outs
// and later attempts.
func (r *AuthReconciler) loadProfileAsync(subjectID string) {
	requestID := r.fence.NewAttempt()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		profile, err := r.profiles.Fetch(ctx, subjectID)
		if err != nil {
			r.logger.Warn("profile fetch failed", zap.String("user_id", subjectID), zap.Error(err))
			profile = nil
		}

		r.applyFenced(requestID, "load_profile", func() {
			r.profile = profile
			r.loading = false
		})
	}()
}

// applyFenced runs fn under the state lock only if requestID is still the
// live attempt; stale results are dropped and logged at debug level.
func (r *AuthReconciler) applyFenced(requestID uint64, op string, fn func()) bool {
	r.mu.Lock()
	if !r.fence.IsCurrent(requestID) {
		r.mu.Unlock()
		r.logger.Debug("discarding stale async result",
			zap.String("op", op), zap.Uint64("request_id", requestID))
		return false
	}
	fn()
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)
	return true
}

func (r *AuthReconciler) snapshotLocked() domain.AuthorizationState {
	state := domain.AuthorizationState{
		User:    r.session,
		Profile: r.profile,
		Loading: r.loading,
	}
	if r.profile != nil {
		state.IsVerified = r.profile.IsVerified
		state.IsAdmin = r.profile.IsAdmin
	}
	state.NeedsPhoneVerification = r.session != nil && r.profile == nil
	return state
}

func (r *AuthReconciler) notify(snap domain.AuthorizationState) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	ls := make([]listener, len(r.listeners))
	copy(ls, r.listeners)
	r.mu.Unlock()

	for _, l := range ls {
		l.fn(snap)
	}
}

func mergeProfileInput(current *domain.Profile, in domain.ProfileInput) domain.ProfileInput {
	merged := domain.ProfileInput{
		Phone:      current.Phone,
		FullName:   current.FullName,
		City:       current.City,
		Occupation: current.Occupation,
		PhotoURL:   current.PhotoURL,
		Email:      current.Email,
		GoogleID:   current.GoogleID,
		IsVerified: current.IsVerified,
	}
	if strings.TrimSpace(in.Phone) != "" {
		merged.Phone = in.Phone
	}
	if strings.TrimSpace(in.FullName) != "" {
		merged.FullName = in.FullName
	}
	if strings.TrimSpace(in.City) != "" {
		merged.City = in.City
	}
	if in.Occupation != nil {
		merged.Occupation = in.Occupation
	}
	if in.PhotoURL != nil {
		merged.PhotoURL = in.PhotoURL
	}
	if in.Email != nil {
		merged.Email = in.Email
	}
	return merged
}
