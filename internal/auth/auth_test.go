package auth

import (
	"testing"
	"time"
)

func TestCheckPIN(t *testing.T) {
	t.Parallel()

	if !CheckPIN("1234", "1234") {
		t.Fatalf("matching PIN rejected")
	}
	if CheckPIN("1234", "4321") {
		t.Fatalf("wrong PIN accepted")
	}
	// An unconfigured PIN must never authenticate.
	if CheckPIN("", "") || CheckPIN("1234", "") || CheckPIN("", "1234") {
		t.Fatalf("empty PIN comparison accepted")
	}
}

func TestSessionStore_PutGet(t *testing.T) {
	t.Parallel()

	s := NewSessionStore(time.Hour)
	token := s.Put(RoleDoctor, "Rossi")
	if token == "" {
		t.Fatalf("empty token")
	}

	sess, ok := s.Get(token)
	if !ok {
		t.Fatalf("session not found")
	}
	if sess.Role != RoleDoctor || sess.Doctor != "Rossi" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.ID == "" {
		t.Fatalf("session id missing")
	}

	if _, ok := s.Get("nope"); ok {
		t.Fatalf("unknown token resolved")
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	t.Parallel()

	s := NewSessionStore(-time.Second)
	token := s.Put(RoleAdmin, "")
	if _, ok := s.Get(token); ok {
		t.Fatalf("expired session returned")
	}
}

func TestSessionStore_Delete(t *testing.T) {
	t.Parallel()

	s := NewSessionStore(time.Hour)
	token := s.Put(RoleAdmin, "")
	s.Delete(token)
	if _, ok := s.Get(token); ok {
		t.Fatalf("deleted session returned")
	}
}

func TestSessionStore_DistinctIDs(t *testing.T) {
	t.Parallel()

	s := NewSessionStore(time.Hour)
	a, _ := s.Get(s.Put(RoleAdmin, ""))
	b, _ := s.Get(s.Put(RoleAdmin, ""))
	if a.ID == b.ID {
		t.Fatalf("session ids collide")
	}
}
