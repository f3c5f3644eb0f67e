package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two access levels of the app.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
)

// CheckPIN is the authentication predicate: constant-time comparison,
// empty expected PIN never matches.
func CheckPIN(provided, expected string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// Session is one authenticated browser session.
type Session struct {
	ID        string
	Role      Role
	Doctor    string // set for RoleDoctor
	expiresAt time.Time
}

// SessionStore keeps caller-managed session tokens in memory.
type SessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]Session
}

// NewSessionStore creates a store whose sessions expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:   ttl,
		items: make(map[string]Session),
	}
}

// Put registers a session and returns its token.
func (s *SessionStore) Put(role Role, doctor string) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	s.items[token] = Session{
		ID:        uuid.New().String(),
		Role:      role,
		Doctor:    doctor,
		expiresAt: time.Now().Add(s.ttl),
	}
	return token
}

// Get resolves a token into its session, if still valid.
func (s *SessionStore) Get(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	v, ok := s.items[token]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(v.expiresAt) {
		delete(s.items, token)
		return Session{}, false
	}
	return v, true
}

// Delete revokes a session token.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

func (s *SessionStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
