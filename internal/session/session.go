// Package session owns the client-side authentication state: the persisted
// token, the current user, and the loading flag that holds route decisions
// until startup verification finishes.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ashureev/taskboard/internal/domain"
	"github.com/ashureev/taskboard/internal/store"
)

// TokenKey is the store key holding the session token.
const TokenKey = "token"

// IdentityFetcher resolves the user behind the current token.
type IdentityFetcher interface {
	Me(ctx context.Context) (*domain.User, error)
}

// Session is the process-wide authentication state.
type Session struct {
	store  store.KV
	logger *slog.Logger

	mu      sync.RWMutex
	user    *domain.User
	loading bool

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Session in the loading state.
func New(kv store.KV, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:   kv,
		logger:  logger,
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Token returns the persisted token, if any. Store failures are logged and
// treated as no token.
func (s *Session) Token(ctx context.Context) (string, bool) {
	token, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Failed to read session token", "error", err)
		}
		return "", false
	}
	return token, token != ""
}

// Bootstrap verifies a persisted token once at startup. A token the backend
// rejects, or that cannot be verified, is removed. Loading is cleared in
// every case.
func (s *Session) Bootstrap(ctx context.Context, fetcher IdentityFetcher) {
	defer s.finishLoading()

	if _, ok := s.Token(ctx); !ok {
		return
	}

	user, err := fetcher.Me(ctx)
	if err != nil {
		s.logger.Info("Session token rejected, signing out", "error", err)
		s.deleteToken(ctx)
		s.setUser(nil)
		return
	}

	s.setUser(user)
	s.logger.Debug("Session restored", "user_id", user.ID)
}

// Login persists token and records user as the signed-in identity.
func (s *Session) Login(ctx context.Context, token string, user *domain.User) {
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		s.logger.Error("Failed to persist session token", "error", err)
	}
	s.setUser(user)
}

// Logout removes the token and clears the user.
func (s *Session) Logout(ctx context.Context) {
	s.deleteToken(ctx)
	s.setUser(nil)
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether startup verification is still in progress.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready is closed once startup verification has finished.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) setUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

func (s *Session) deleteToken(ctx context.Context) {
	if err := s.store.Delete(ctx, TokenKey); err != nil {
		s.logger.Error("Failed to delete session token", "error", err)
	}
}

func (s *Session) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}
