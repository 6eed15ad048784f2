package auth

import "sync"

// Credentials are what the terminal keeps between requests: the bearer token
// and the tenant it operates for.
type Credentials struct {
	Token      string
	TenantID   string
	TenantName string
	Email      string
}

// Store persists terminal credentials. Implementations decide where they
// live; the rest of the code only sees get/set/clear.
type Store interface {
	Get() (Credentials, bool)
	Set(Credentials)
	Clear()
}

// MemoryStore keeps credentials for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, s.set
}

func (s *MemoryStore) Set(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.set = false
}
