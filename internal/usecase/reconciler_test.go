package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/deeplink"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/session"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

// ---- collaborator fakes ----

type fakeStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStorage() *fakeStorage { return &fakeStorage{data: map[string]string{}} }

func (f *fakeStorage) Set(_ context.Context, ns, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[ns+":"+key] = value.(string)
	return nil
}

func (f *fakeStorage) Get(_ context.Context, ns, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[ns+":"+key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStorage) Delete(_ context.Context, ns, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, ns+":"+key)
	return nil
}

func (f *fakeStorage) seedSession(t *testing.T, sess domain.Session) {
	t.Helper()
	raw, err := json.Marshal(sess)
	require.NoError(t, err)
	require.NoError(t, f.Set(context.Background(), "auth", "session", string(raw), 0))
}

type fakeProvider struct {
	setErr      error
	signOutGate chan struct{}
}

func (f *fakeProvider) SetSession(_ context.Context, access, refresh string) (*domain.Session, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	return &domain.Session{
		UserID:       "user-1",
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeProvider) RefreshSession(_ context.Context, _ string) (*domain.Session, error) {
	return nil, xerrors.ErrInvalidTokens
}

func (f *fakeProvider) SignOut(_ context.Context, _ string) error {
	if f.signOutGate != nil {
		<-f.signOutGate
	}
	return nil
}

// fakeProfiles mimics the repository's semantics: trim, default, replace by
// id, echo the persisted row.
type fakeProfiles struct {
	mu        sync.Mutex
	rows      map[string]*domain.Profile
	fetchGate chan struct{}
	fetchErr  error
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{rows: map[string]*domain.Profile{}} }

func (f *fakeProfiles) Fetch(_ context.Context, subjectID string) (*domain.Profile, error) {
	if f.fetchGate != nil {
		<-f.fetchGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p, ok := f.rows[subjectID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, subjectID string, in domain.ProfileInput) (*domain.Profile, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, xerrors.NewValidation("id", xerrors.ErrUserIDRequired)
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, xerrors.NewValidation("phone", xerrors.ErrPhoneRequired)
	}
	p := &domain.Profile{
		ID:         subjectID,
		Phone:      strings.TrimSpace(in.Phone),
		FullName:   strings.TrimSpace(in.FullName),
		City:       strings.TrimSpace(in.City),
		Occupation: in.Occupation,
		PhotoURL:   in.PhotoURL,
		Email:      in.Email,
		GoogleID:   in.GoogleID,
		IsVerified: in.IsVerified,
		UpdatedAt:  time.Now(),
	}
	f.mu.Lock()
	f.rows[subjectID] = p
	f.mu.Unlock()
	cp := *p
	return &cp, nil
}

type fakeVerifier struct {
	mu      sync.Mutex
	results map[string]*domain.ApprovedMember
	gates   map[string]chan struct{}
	entered chan string
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{
		results: map[string]*domain.ApprovedMember{},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 8),
	}
}

func (f *fakeVerifier) Verify(_ context.Context, phone string) domain.VerificationOutcome {
	f.entered <- phone
	f.mu.Lock()
	gate := f.gates[phone]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.VerificationOutcome{Matched: f.results[phone]}
}

type harness struct {
	reconciler *AuthReconciler
	store      *session.Store
	provider   *fakeProvider
	storage    *fakeStorage
	profiles   *fakeProfiles
	verifier   *fakeVerifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		provider: &fakeProvider{},
		storage:  newFakeStorage(),
		profiles: newFakeProfiles(),
		verifier: newFakeVerifier(),
	}
	logger := zap.NewNop()
	h.store = session.NewStore(h.provider, h.storage, logger)
	capture := deeplink.NewStrategy(false, nil, h.store, logger)
	h.reconciler = NewAuthReconciler(h.store, h.profiles, h.verifier, capture, logger)
	t.Cleanup(h.reconciler.Close)
	return h
}

func waitSettled(t *testing.T, r *AuthReconciler) {
	t.Helper()
	require.Eventually(t, func() bool { return !r.Snapshot().Loading },
		time.Second, time.Millisecond)
}

// ---- scenarios ----

func TestBootWithoutSessionRoutesToLogin(t *testing.T) {
	h := newHarness(t)

	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)

	state := h.reconciler.Snapshot()
	assert.False(t, state.HasSession())
	assert.Equal(t, domain.LoginRoute, h.reconciler.Route())
}

func TestRestoredSessionWithoutProfileRoutesToPhoneVerification(t *testing.T) {
	h := newHarness(t)
	h.storage.seedSession(t, domain.Session{
		UserID: "user-1", AccessToken: "acc", RefreshToken: "ref",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)

	state := h.reconciler.Snapshot()
	assert.True(t, state.HasSession())
	assert.False(t, state.HasProfile())
	assert.True(t, state.NeedsPhoneVerification)
	assert.Equal(t, domain.PhoneVerificationRoute, h.reconciler.Route())
}

func TestRestoredSessionWithProfileRoutesToMain(t *testing.T) {
	h := newHarness(t)
	h.storage.seedSession(t, domain.Session{
		UserID: "user-1", AccessToken: "acc", RefreshToken: "ref",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	h.profiles.rows["user-1"] = &domain.Profile{ID: "user-1", Phone: "9876543210", FullName: "Asha"}

	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)

	assert.Equal(t, domain.MainRoute, h.reconciler.Route())
}

func TestVerifiedOnboardingFlow(t *testing.T) {
	h := newHarness(t)
	h.verifier.results["9876543210"] = &domain.ApprovedMember{
		Phone: "9876543210", FullName: "Asha Agrawal", City: "Jabalpur",
	}

	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)

	// Sign in via deep link.
	err := h.reconciler.HandleCallbackURL(context.Background(),
		"com.jbpagrawal.sabha://auth/callback#access_token=abc&refresh_token=xyz")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.reconciler.Snapshot().HasSession() },
		time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return h.reconciler.Route() == domain.PhoneVerificationRoute },
		time.Second, time.Millisecond)

	out, err := h.reconciler.VerifyPhone(context.Background(), "9876543210")
	require.NoError(t, err)
	require.True(t, out.Verified())
	assert.Equal(t, "Asha Agrawal", out.Matched.FullName)

	profile, err := h.reconciler.CreateProfile(context.Background(), domain.ProfileInput{
		Phone:      "9876543210",
		FullName:   out.Matched.FullName,
		City:       out.Matched.City,
		IsVerified: out.Verified(),
	})
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)

	state := h.reconciler.Snapshot()
	assert.Equal(t, domain.MainRoute, h.reconciler.Route())
	assert.True(t, state.IsVerified)
	assert.False(t, state.NeedsPhoneVerification)
}

func TestUnmatchedPhoneStillAllowsProfileCreation(t *testing.T) {
	h := newHarness(t)

	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)
	_, err := h.store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)

	out, err := h.reconciler.VerifyPhone(context.Background(), "9000000000")
	require.NoError(t, err)
	assert.False(t, out.Verified())

	profile, err := h.reconciler.CreateProfile(context.Background(), domain.ProfileInput{
		Phone: "9000000000", FullName: "New Member", City: "Jabalpur",
	})
	require.NoError(t, err)
	assert.False(t, profile.IsVerified)
	assert.Equal(t, domain.MainRoute, h.reconciler.Route())
}

func TestVerifyPhoneRejectsInvalidFormat(t *testing.T) {
	h := newHarness(t)
	h.reconciler.Start(context.Background())

	_, err := h.reconciler.VerifyPhone(context.Background(), "12345")
	assert.True(t, xerrors.IsValidation(err))

	_, err = h.reconciler.VerifyPhone(context.Background(), "1234567890") // leading 1 not a mobile
	assert.True(t, xerrors.IsValidation(err))
}

// Only the most recent attempt's result may be applied; earlier in-flight
// attempts resolve as stale.
func TestSupersededVerificationIsStale(t *testing.T) {
	h := newHarness(t)
	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)

	gate := make(chan struct{})
	h.verifier.gates["9111111111"] = gate
	h.verifier.results["9222222222"] = &domain.ApprovedMember{Phone: "9222222222"}

	type result struct {
		out domain.VerificationOutcome
		err error
	}
	firstDone := make(chan result, 1)
	go func() {
		out, err := h.reconciler.VerifyPhone(context.Background(), "9111111111")
		firstDone <- result{out, err}
	}()

	// Issue attempt 2 only once attempt 1 has reached the verifier, so the
	// second attempt is guaranteed to supersede the first.
	require.Equal(t, "9111111111", <-h.verifier.entered)

	out2, err := h.reconciler.VerifyPhone(context.Background(), "9222222222")
	require.NoError(t, err)
	assert.True(t, out2.Verified())

	close(gate)
	first := <-firstDone
	assert.ErrorIs(t, first.err, xerrors.ErrStaleResult)
}

// Sign-out must reflect locally before any remote call resolves, even when
// the provider hangs forever.
func TestSignOutIsImmediateAndAtomic(t *testing.T) {
	h := newHarness(t)
	h.provider.signOutGate = make(chan struct{}) // never closed until cleanup
	defer close(h.provider.signOutGate)

	h.profiles.rows["user-1"] = &domain.Profile{ID: "user-1", Phone: "9876543210"}
	h.storage.seedSession(t, domain.Session{
		UserID: "user-1", AccessToken: "acc", RefreshToken: "ref",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)
	require.Equal(t, domain.MainRoute, h.reconciler.Route())

	// Observers must never see a profile without a session.
	h.reconciler.Subscribe(func(s domain.AuthorizationState) {
		if s.Profile != nil && s.User == nil {
			t.Error("observed profile without session")
		}
	})

	h.reconciler.SignOut()

	state := h.reconciler.Snapshot()
	assert.False(t, state.HasSession())
	assert.False(t, state.HasProfile())
	assert.Equal(t, domain.LoginRoute, h.reconciler.Route())
}

// A profile fetch still in flight when the user signs out must not resurrect
// state when it lands.
func TestInFlightProfileFetchDiscardedAfterSignOut(t *testing.T) {
	h := newHarness(t)
	gate := make(chan struct{})
	h.profiles.fetchGate = gate
	h.profiles.rows["user-1"] = &domain.Profile{ID: "user-1", Phone: "9876543210"}

	h.reconciler.Start(context.Background())
	_, err := h.store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)

	h.reconciler.SignOut()
	close(gate) // fetch now completes, but it is fenced out

	// Give the stale apply a chance to (incorrectly) land.
	time.Sleep(20 * time.Millisecond)
	state := h.reconciler.Snapshot()
	assert.False(t, state.HasSession())
	assert.False(t, state.HasProfile())
}

// Deep-link capture racing the session-change path: the token path may fail
// with invalid tokens, which is logged, never surfaced.
func TestConsumedDeepLinkTokensAreSwallowed(t *testing.T) {
	h := newHarness(t)
	h.provider.setErr = xerrors.ErrInvalidTokens

	h.reconciler.Start(context.Background())
	err := h.reconciler.HandleCallbackURL(context.Background(),
		"com.jbpagrawal.sabha://auth/callback#access_token=used&refresh_token=used")

	assert.NoError(t, err)
}

func TestCreateProfileRequiresSession(t *testing.T) {
	h := newHarness(t)
	h.reconciler.Start(context.Background())
	waitSettled(t, h.reconciler)

	_, err := h.reconciler.CreateProfile(context.Background(), domain.ProfileInput{
		Phone: "9876543210", FullName: "A", City: "B",
	})
	assert.ErrorIs(t, err, xerrors.ErrNoSession)
}

func TestCreateProfileValidation(t *testing.T) {
	h := newHarness(t)
	h.reconciler.Start(context.Background())
	_, err := h.store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)

	_, err = h.reconciler.CreateProfile(context.Background(), domain.ProfileInput{Phone: "9876543210", City: "Jabalpur"})
	assert.True(t, xerrors.IsValidation(err))

	_, err = h.reconciler.CreateProfile(context.Background(), domain.ProfileInput{Phone: "9876543210", FullName: "Asha"})
	assert.True(t, xerrors.IsValidation(err))
}

// Upsert then fetch round-trips the stored phone.
func TestProfileUpsertRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.reconciler.Start(context.Background())
	_, err := h.store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)

	_, err = h.reconciler.CreateProfile(context.Background(), domain.ProfileInput{
		Phone: "9998887776", FullName: "A", City: "C",
	})
	require.NoError(t, err)

	require.NoError(t, h.reconciler.RefreshProfile(context.Background()))
	state := h.reconciler.Snapshot()
	require.True(t, state.HasProfile())
	assert.Equal(t, "9998887776", state.Profile.Phone)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	h := newHarness(t)
	h.reconciler.Start(context.Background())
	_, err := h.store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)

	_, err = h.reconciler.CreateProfile(context.Background(), domain.ProfileInput{
		Phone: "9876543210", FullName: "Asha", City: "Jabalpur", IsVerified: true,
	})
	require.NoError(t, err)

	occupation := "Engineer"
	updated, err := h.reconciler.UpdateProfile(context.Background(), domain.ProfileInput{
		Occupation: &occupation,
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha", updated.FullName)
	assert.Equal(t, "9876543210", updated.Phone)
	require.NotNil(t, updated.Occupation)
	assert.Equal(t, "Engineer", *updated.Occupation)
	assert.True(t, updated.IsVerified, "verification flag survives updates")
}

func TestProfileFetchTransportFailureDegrades(t *testing.T) {
	h := newHarness(t)
	h.profiles.fetchErr = xerrors.ErrTransport

	h.reconciler.Start(context.Background())
	_, err := h.store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)
	waitSettled(t, h.reconciler)

	// Routing keeps working; the user lands where they can retry.
	assert.Equal(t, domain.PhoneVerificationRoute, h.reconciler.Route())
}
