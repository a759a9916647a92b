// Package session holds the client side of the auth flow: a persisted bearer
// token, the user it belongs to, and a small state machine that gates views
// the way the web app's auth provider does.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/booknest/booknest-server/pkg/auth"
	"github.com/booknest/booknest-server/pkg/logger"
)

type State int

const (
	Unauthenticated State = iota
	Loading
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// ProfileFetcher resolves a token to its user, typically by calling the
// profile endpoint.
type ProfileFetcher interface {
	CurrentUser(ctx context.Context, token string) (*domain.UserInfo, error)
}

type Session struct {
	mu    sync.Mutex
	store TokenStore
	api   ProfileFetcher

	state State
	token string
	user  *domain.UserInfo
}

// New returns a session in the Loading state; call Init to settle it.
func New(store TokenStore, api ProfileFetcher) *Session {
	return &Session{
		store: store,
		api:   api,
		state: Loading,
	}
}

// Init restores a persisted token. A token whose expiry has already passed is
// dropped without a network call; otherwise the profile endpoint decides
// whether the session is still good.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil || token == "" {
		s.setUnauthenticated()
		return err
	}

	exp, err := auth.DecodeExpiry(token)
	if err != nil || time.Now().After(exp) {
		_ = s.store.Clear()
		s.setUnauthenticated()
		return nil
	}

	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		logger.Debug("Stored token rejected, clearing session", "error", err)
		_ = s.store.Clear()
		s.setUnauthenticated()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = Authenticated
	s.mu.Unlock()
	return nil
}

// Login adopts a freshly issued token and user without re-fetching.
func (s *Session) Login(token string, user *domain.UserInfo) error {
	if err := s.store.Save(token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = Authenticated
	s.mu.Unlock()
	return nil
}

func (s *Session) Logout() error {
	err := s.store.Clear()
	s.setUnauthenticated()
	return err
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() *domain.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) setUnauthenticated() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = Unauthenticated
	s.mu.Unlock()
}

// Gate is the route-guard decision for a protected view.
type Gate int

const (
	GateWait Gate = iota // still loading, show a spinner
	GateRedirect         // not signed in, send to the login entry point
	GateAllow
)

// Guard maps the current state onto a gate decision.
func (s *Session) Guard() Gate {
	switch s.State() {
	case Loading:
		return GateWait
	case Authenticated:
		return GateAllow
	default:
		return GateRedirect
	}
}
