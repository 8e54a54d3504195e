package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned by Session.Token when no token is held.
var ErrNoToken = errors.New("no session token")

// GenericLoginFailure is shown instead of raw transport or status errors.
const GenericLoginFailure = "login failed, please try again"

// LoginResult is what the UI shows after a login attempt
type LoginResult struct {
	Success bool
	Message string
}

// Session owns the admin token. It is the only writer of the token store
// and implements oauth2.TokenSource for the API client.
type Session struct {
	api    ports.AuthAPI
	store  ports.TokenStore
	clock  Clock
	logger *slog.Logger

	mu            sync.RWMutex
	token         string
	authenticated bool
	restoring     bool
}

var _ oauth2.TokenSource = (*Session)(nil)

type SessionOption func(*Session)

func WithSessionClock(c Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession returns an unauthenticated session. Call Restore once at
// startup to pick up a persisted token.
func NewSession(api ports.AuthAPI, store ports.TokenStore, opts ...SessionOption) *Session {
	s := &Session{
		api:       api,
		store:     store,
		clock:     SystemClock,
		logger:    slog.Default(),
		restoring: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted token and asks the server whether it is still
// valid. Any failure clears the token. It reports the resulting state.
func (s *Session) Restore(ctx context.Context) bool {
	defer func() {
		s.mu.Lock()
		s.restoring = false
		s.mu.Unlock()
	}()

	token, err := s.store.LoadToken(ctx)
	if err != nil {
		s.logger.Warn("load session token", "error", err)
		s.reset(ctx)
		return false
	}
	if token == "" {
		s.setState("", false)
		return false
	}

	if s.expired(token) {
		s.logger.Debug("stored session token expired")
		s.reset(ctx)
		return false
	}

	resp, err := s.api.Verify(ctx, token)
	if err != nil || !resp.Valid {
		if err != nil {
			s.logger.Warn("verify session token", "error", err)
		}
		s.reset(ctx)
		return false
	}

	s.setState(token, true)
	return true
}

// expired reports whether token is a JWT whose exp claim has passed. Opaque
// tokens are never considered expired here; the server decides.
func (s *Session) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.clock.Now().Before(claims.ExpiresAt.Time)
}

// Login sends the password. Only a successful response carrying a token
// changes state; everything else leaves the session as it was.
func (s *Session) Login(ctx context.Context, password string) LoginResult {
	resp, err := s.api.Login(ctx, password)
	if err != nil {
		s.logger.Warn("login request failed", "error", err)
		return LoginResult{Success: false, Message: GenericLoginFailure}
	}
	if !resp.Success || resp.Token == "" {
		return LoginResult{Success: false, Message: resp.Message}
	}

	if err := s.store.SaveToken(ctx, resp.Token); err != nil {
		s.logger.Error("persist session token", "error", err)
		return LoginResult{Success: false, Message: GenericLoginFailure}
	}

	s.setState(resp.Token, true)
	return LoginResult{Success: true, Message: resp.Message}
}

// Logout drops the session locally first, then tells the server. The
// server call is best-effort and its failure is only logged.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.authenticated = false
	s.mu.Unlock()

	if err := s.store.ClearToken(ctx); err != nil {
		s.logger.Warn("clear session token", "error", err)
	}

	if token == "" {
		return
	}
	if err := s.api.Logout(ctx, token); err != nil {
		s.logger.Warn("logout notification failed", "error", err)
	}
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsLoading is true until Restore has finished.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restoring
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

func (s *Session) setState(token string, authenticated bool) {
	s.mu.Lock()
	s.token = token
	s.authenticated = authenticated
	s.mu.Unlock()
}

func (s *Session) reset(ctx context.Context) {
	s.setState("", false)
	if err := s.store.ClearToken(ctx); err != nil {
		s.logger.Warn("clear session token", "error", err)
	}
}
