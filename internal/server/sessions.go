package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/packsmith-labs/packsmith/internal/addon"
)

// sessionStore holds each session's uploaded-input pool in memory. The pool
// lives for the session TTL and is gone on restart, matching the
// session-scoped lifetime of the response cache.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
}

type session struct {
	inputs   []addon.UploadedInput
	lastSeen time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[string]*session),
	}
}

func (s *sessionStore) open() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	s.sessions[id] = &session{lastSeen: time.Now()}
	return id
}

func (s *sessionStore) add(id string, inputs ...addon.UploadedInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.inputs = append(sess.inputs, inputs...)
	sess.lastSeen = time.Now()
	return true
}

func (s *sessionStore) inputs(id string) ([]addon.UploadedInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess.inputs, true
}

// expireLocked drops sessions idle past the TTL. Called under s.mu on the
// open path; no background sweeper needed at this scale.
func (s *sessionStore) expireLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
