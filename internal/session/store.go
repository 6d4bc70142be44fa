package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const cleanupInterval = time.Minute

// Store keeps sessions in memory, keyed by the cookie value. Sessions idle
// past the TTL are dropped by a background sweep; there is no persistence
// across process restarts.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *Store) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireSessions()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) expireSessions() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.expired(now, s.ttl) {
			sess.Logout()
			delete(s.sessions, id)
		}
	}
}

// Create registers a fresh anonymous session.
func (s *Store) Create() *Session {
	sess := &Session{ID: uuid.New().String()}
	sess.touch(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get looks a session up by cookie value, refreshing its idle timer.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		sess.touch(time.Now())
	}
	return sess, ok
}

// Delete removes a session outright (logout).
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.Logout()
		delete(s.sessions, id)
	}
}

// Close stops the cleanup loop and waits for it.
func (s *Store) Close() {
	close(s.stopCleanup)
	s.wg.Wait()
}
