// Package store keeps live quiz sessions in memory. Nothing survives a
// restart: sessions exist for the lifetime of the attempt and are swept
// once their TTL passes.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkarim/testcraft/internal/model"
)

const sweepInterval = time.Minute

type entry struct {
	state     model.SessionState
	expiresAt time.Time
}

// Store is an in-memory session store keyed by opaque session IDs.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	done     chan struct{}
	once     sync.Once
}

// New creates a store whose sessions expire ttl after their last access.
func New(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]entry),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Close stops the expiry sweeper.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

// Create stores a new session and returns its ID.
func (s *Store) Create(state model.SessionState) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = entry{state: state, expiresAt: time.Now().Add(s.ttl)}
	return id
}

// Get returns the session state for id. Expired sessions are treated as
// missing; a hit slides the expiry forward.
func (s *Store) Get(id string) (model.SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return model.SessionState{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.sessions, id)
		return model.SessionState{}, false
	}
	e.expiresAt = time.Now().Add(s.ttl)
	s.sessions[id] = e
	return e.state, true
}

// Update replaces the state of an existing session, sliding its expiry.
// Unknown or expired IDs are ignored and reported as false.
func (s *Store) Update(id string, state model.SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.sessions, id)
		return false
	}
	s.sessions[id] = entry{state: state, expiresAt: time.Now().Add(s.ttl)}
	return true
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *Store) removeExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
