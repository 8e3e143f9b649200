// Package session owns the provider-issued session: at most one is current at
// any time, and every change is fanned out to subscribers in emission order.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/cache"
)

const (
	cacheNamespace = "auth"
	cacheKey       = "session"
)

// Provider is the subset of the remote auth service the store drives.
type Provider interface {
	SetSession(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Storage is the durable local store used for cold-start rehydration. The
// redis-backed cache util satisfies it.
type Storage interface {
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, namespace, key string) (string, error)
	Delete(ctx context.Context, namespace, key string) error
}

type subscriber struct {
	id string
	fn func(domain.SessionEvent)
}

type Store struct {
	provider Provider
	cache    Storage
	logger   *zap.Logger

	mu      sync.Mutex
	current *domain.Session
	subs    []subscriber

	// Serializes event delivery so subscribers observe changes in emission
	// order, one callback invocation per event.
	emitMu sync.Mutex
}

func NewStore(provider Provider, c Storage, logger *zap.Logger) *Store {
	return &Store{provider: provider, cache: c, logger: logger}
}

// Current returns the last-known session without blocking.
func (s *Store) Current() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers for session-change events. Past events are not replayed.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(domain.SessionEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Restore rehydrates a persisted session on cold start. A missing or
// unreadable entry is not an error; an expired session is refreshed through
// the provider first. Emits a RESTORED event when a session comes back.
func (s *Store) Restore(ctx context.Context) (*domain.Session, error) {
	raw, err := s.cache.Get(ctx, cacheNamespace, cacheKey)
	if err != nil {
		if !cache.IsMiss(err) {
			s.logger.Warn("session storage read failed", zap.Error(err))
		}
		return nil, nil
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.logger.Warn("persisted session unreadable, discarding", zap.Error(err))
		_ = s.cache.Delete(ctx, cacheNamespace, cacheKey)
		return nil, nil
	}

	if sess.Expired(time.Now()) {
		refreshed, err := s.provider.RefreshSession(ctx, sess.RefreshToken)
		if err != nil {
			s.logger.Info("stored session expired and refresh failed", zap.Error(err))
			_ = s.cache.Delete(ctx, cacheNamespace, cacheKey)
			return nil, nil
		}
		s.adopt(refreshed, domain.SessionRestored)
		return refreshed, nil
	}

	s.adopt(&sess, domain.SessionRestored)
	return &sess, nil
}

// SetFromTokens establishes a session from a deep-link token pair. Fails with
// ErrInvalidTokens when the provider rejects them (expired, malformed, or
// already consumed by the session-change path).
func (s *Store) SetFromTokens(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	sess, err := s.provider.SetSession(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	s.adopt(sess, domain.SessionSignedIn)
	return sess, nil
}

// Adopt installs a session obtained elsewhere (id-token grant, PKCE exchange)
// and notifies subscribers of the sign-in.
func (s *Store) Adopt(sess *domain.Session) {
	s.adopt(sess, domain.SessionSignedIn)
}

// SignOut clears local session state immediately and unconditionally. The
// remote revocation and storage cleanup are best-effort side effects; their
// failures are logged and swallowed.
func (s *Store) SignOut() {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	s.emit(domain.SessionEvent{Type: domain.SessionSignedOut})

	go func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.cache.Delete(cleanupCtx, cacheNamespace, cacheKey); err != nil {
			s.logger.Warn("failed to clear persisted session", zap.Error(err))
		}
		if prev != nil {
			if err := s.provider.SignOut(cleanupCtx, prev.AccessToken); err != nil {
				s.logger.Warn("remote sign-out failed", zap.Error(err))
			}
		}
	}()
}

func (s *Store) adopt(sess *domain.Session, event domain.SessionEventType) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.persist(sess)
	s.emit(domain.SessionEvent{Type: event, Session: sess})
}

func (s *Store) persist(sess *domain.Session) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ttl := time.Duration(0)
	if !sess.ExpiresAt.IsZero() {
		// Keep the entry around past expiry so the refresh token survives
		// restarts.
		ttl = time.Until(sess.ExpiresAt) + 30*24*time.Hour
	}
	if err := s.cache.Set(ctx, cacheNamespace, cacheKey, string(payload), ttl); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
}

func (s *Store) emit(ev domain.SessionEvent) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
