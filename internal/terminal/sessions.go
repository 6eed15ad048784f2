package terminal

import (
	"sync"

	"github.com/nandasafiq/warungpos/internal/cart"
)

// Session is one terminal's in-progress order. The mutex serializes all cart
// access for the session, including the checkout call, so an edit cannot
// race an in-flight submission.
type Session struct {
	mu   sync.Mutex
	cart *cart.Cart
}

// With runs fn while holding the session lock.
func (s *Session) With(fn func(c *cart.Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart)
}

// SessionStore hands out cart sessions keyed by the id the terminal UI
// presents. Sessions are created on first use and live until the process
// exits; a register runs a handful of them at most.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		session = &Session{cart: cart.New()}
		s.sessions[id] = session
	}
	return session
}
