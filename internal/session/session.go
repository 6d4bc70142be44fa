package session

import (
	"sync"
	"time"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/api"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/auth"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/cart"
)

// Tokens is the slice of the identity layer the session needs: a claims
// snapshot of the current access token.
type Tokens interface {
	Snapshot() (auth.Snapshot, error)
}

// Session is one browser's server-side state: the identity tokens, the API
// client bound to them, the cart composer, and the per-page guards. A
// session owns its cart exclusively; nothing here is shared across
// sessions.
type Session struct {
	ID string

	mu         sync.Mutex
	loginState string
	tokens     Tokens
	apiClient  *api.Client
	composer   *cart.Composer
	guards     map[string]*auth.Guard
	lastSeen   time.Time
}

// BeginLogin records the outstanding provider round-trip. While set, the
// auth snapshot reports loading and the guard answers Pending.
func (s *Session) BeginLogin(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginState = state
}

// TakeLoginState consumes and returns the pending login state, empty when
// no login is outstanding.
func (s *Session) TakeLoginState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.loginState
	s.loginState = ""
	return state
}

// CompleteLogin installs the token set and the API client bound to it.
func (s *Session) CompleteLogin(tokens Tokens, client *api.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginState = ""
	s.tokens = tokens
	s.apiClient = client
}

// Logout drops tokens, API client, and cart. The cart goes with no
// confirmation and no persistence.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginState = ""
	s.tokens = nil
	s.apiClient = nil
	if s.composer != nil {
		s.composer.Discard()
		s.composer = nil
	}
}

// Snapshot is the guard's current view of this session.
func (s *Session) Snapshot() auth.Snapshot {
	s.mu.Lock()
	loginPending := s.loginState != ""
	tokens := s.tokens
	s.mu.Unlock()

	if loginPending {
		return auth.Snapshot{Loading: true}
	}
	if tokens == nil {
		return auth.Snapshot{}
	}
	snap, err := tokens.Snapshot()
	if err != nil {
		// Unreadable token: treat as signed out rather than guessing.
		return auth.Snapshot{}
	}
	return snap
}

// API returns the client bound to this session's tokens, nil when signed
// out.
func (s *Session) API() *api.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiClient
}

// Cart returns the current composer. An ended composer (submitted or
// discarded) is returned as-is so that further operations answer "cart
// closed" until OpenCart starts the next composition.
func (s *Session) Cart() *cart.Composer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.composer == nil {
		s.composer = cart.NewComposer()
	}
	return s.composer
}

// OpenCart ends any previous composition and starts a fresh one.
func (s *Session) OpenCart() *cart.Composer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.composer != nil {
		s.composer.Discard()
	}
	s.composer = cart.NewComposer()
	return s.composer
}

// DiscardCart ends the current composition session, if any. The ended
// composer stays in place so follow-up cart calls see a closed cart, not
// a silently fresh one.
func (s *Session) DiscardCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.composer != nil {
		s.composer.Discard()
	}
}

// Guard returns this session's guard for the named page, so that denial
// side effects fire once per transition rather than on every request.
func (s *Session) Guard(page string) *auth.Guard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guards == nil {
		s.guards = make(map[string]*auth.Guard)
	}
	g, ok := s.guards[page]
	if !ok {
		g = auth.NewGuard()
		s.guards[page] = g
	}
	return g
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}
