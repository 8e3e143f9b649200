package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type fakeStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[string]string{}}
}

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

type fakeProvider struct {
	mu          sync.Mutex
	setErr      error
	refreshed   *domain.Session
	refreshErr  error
	signOutErr  error
	signOutSeen int
	signOutGate chan struct{} // when set, SignOut blocks until closed
}

func (f *fakeProvider) SetSession(_ context.Context, access, refresh string) (*domain.Session, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	return &domain.Session{UserID: "user-1", AccessToken: access, RefreshToken: refresh}, nil
}

func (f *fakeProvider) RefreshSession(_ context.Context, _ string) (*domain.Session, error) {
	return f.refreshed, f.refreshErr
}

func (f *fakeProvider) SignOut(_ context.Context, _ string) error {
	if f.signOutGate != nil {
		<-f.signOutGate
	}
	f.mu.Lock()
	f.signOutSeen++
	f.mu.Unlock()
	return f.signOutErr
}

func newTestStore(p *fakeProvider, st *fakeStorage) *Store {
	return NewStore(p, st, zap.NewNop())
}

func TestSetFromTokensEstablishesSession(t *testing.T) {
	store := newTestStore(&fakeProvider{}, newFakeStorage())

	var events []domain.SessionEvent
	store.Subscribe(func(ev domain.SessionEvent) { events = append(events, ev) })

	sess, err := store.SetFromTokens(context.Background(), "acc", "ref")

	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, sess, store.Current())
	require.Len(t, events, 1)
	assert.Equal(t, domain.SessionSignedIn, events[0].Type)
}

func TestSetFromTokensRejection(t *testing.T) {
	store := newTestStore(&fakeProvider{setErr: xerrors.ErrInvalidTokens}, newFakeStorage())

	_, err := store.SetFromTokens(context.Background(), "bad", "bad")

	assert.ErrorIs(t, err, xerrors.ErrInvalidTokens)
	assert.Nil(t, store.Current())
}

func TestSubscribeNoReplay(t *testing.T) {
	store := newTestStore(&fakeProvider{}, newFakeStorage())

	_, err := store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)

	called := false
	store.Subscribe(func(domain.SessionEvent) { called = true })

	assert.False(t, called, "new subscribers must not see past events")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	store := newTestStore(&fakeProvider{}, newFakeStorage())

	count := 0
	unsub := store.Subscribe(func(domain.SessionEvent) { count++ })

	_, _ = store.SetFromTokens(context.Background(), "a", "r")
	unsub()
	store.SignOut()

	assert.Equal(t, 1, count)
}

// Sign-out must clear local state synchronously even when the remote call
// hangs forever.
func TestSignOutIsImmediate(t *testing.T) {
	gate := make(chan struct{})
	p := &fakeProvider{signOutGate: gate}
	store := newTestStore(p, newFakeStorage())

	_, err := store.SetFromTokens(context.Background(), "acc", "ref")
	require.NoError(t, err)

	var sawSignOut bool
	store.Subscribe(func(ev domain.SessionEvent) {
		if ev.Type == domain.SessionSignedOut {
			sawSignOut = true
		}
	})

	store.SignOut()

	assert.Nil(t, store.Current())
	assert.True(t, sawSignOut)
	close(gate)
}

func TestRestoreMissReturnsNil(t *testing.T) {
	store := newTestStore(&fakeProvider{}, newFakeStorage())

	sess, err := store.Restore(context.Background())

	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRestoreRehydratesPersistedSession(t *testing.T) {
	st := newFakeStorage()
	persisted := domain.Session{
		UserID:       "user-9",
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	raw, _ := json.Marshal(persisted)
	require.NoError(t, st.Set(context.Background(), "auth", "session", string(raw), 0))

	store := newTestStore(&fakeProvider{}, st)
	sess, err := store.Restore(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "user-9", sess.UserID)
	assert.Equal(t, "user-9", store.Current().UserID)
}

func TestRestoreRefreshesExpiredSession(t *testing.T) {
	st := newFakeStorage()
	persisted := domain.Session{
		UserID:       "user-9",
		AccessToken:  "old",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	raw, _ := json.Marshal(persisted)
	require.NoError(t, st.Set(context.Background(), "auth", "session", string(raw), 0))

	fresh := &domain.Session{UserID: "user-9", AccessToken: "new", RefreshToken: "ref2", ExpiresAt: time.Now().Add(time.Hour)}
	store := newTestStore(&fakeProvider{refreshed: fresh}, st)

	sess, err := store.Restore(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "new", sess.AccessToken)
}

func TestRestoreExpiredRefreshFailure(t *testing.T) {
	st := newFakeStorage()
	persisted := domain.Session{
		UserID:       "user-9",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	raw, _ := json.Marshal(persisted)
	require.NoError(t, st.Set(context.Background(), "auth", "session", string(raw), 0))

	store := newTestStore(&fakeProvider{refreshErr: errors.New("revoked")}, st)
	sess, err := store.Restore(context.Background())

	require.NoError(t, err)
	assert.Nil(t, sess)
	// The dead entry must be gone so the next boot is clean.
	_, getErr := st.Get(context.Background(), "auth", "session")
	assert.ErrorIs(t, getErr, redis.Nil)
}

func TestEventsDeliveredInEmissionOrder(t *testing.T) {
	store := newTestStore(&fakeProvider{}, newFakeStorage())

	var order []domain.SessionEventType
	store.Subscribe(func(ev domain.SessionEvent) { order = append(order, ev.Type) })

	_, _ = store.SetFromTokens(context.Background(), "a", "r")
	store.SignOut()
	_, _ = store.SetFromTokens(context.Background(), "a2", "r2")

	assert.Equal(t, []domain.SessionEventType{
		domain.SessionSignedIn,
		domain.SessionSignedOut,
		domain.SessionSignedIn,
	}, order)
}
