package session

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session is a server-side bag of string values keyed by an opaque token.
type Session struct {
	Token     string            `json:"token"`
	Data      map[string]string `json:"data,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

func newSession(now time.Time, ttl time.Duration) *Session {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return &Session{
		Token:     base64.RawURLEncoding.EncodeToString(b),
		Data:      make(map[string]string),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Expired reports whether the session deadline has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.Data[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}

func (s *Session) Delete(key string) {
	delete(s.Data, key)
}
