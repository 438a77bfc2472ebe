package credentials

import (
	"context"
	"errors"
	"net/http"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/session"
)

// SessionStore keeps credentials in a server-side session (memory or
// Redis); the browser only holds the session cookie.
type SessionStore struct {
	sessions *session.Manager
}

func NewSessionStore(m *session.Manager) *SessionStore {
	return &SessionStore{sessions: m}
}

func (s *SessionStore) Load(ctx context.Context, r *http.Request) (*Set, error) {
	sess, err := s.sessions.Load(ctx, r)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	set := NewSet()
	for _, p := range loopin.Providers() {
		if c, ok := decode(p, sess.Data); ok {
			set.creds[p] = c
		}
	}
	set.BackendToken = Canonical(sess.Data[backendTokenKey])
	return set, nil
}

// Save replaces the session's credential keys with the contents of set.
func (s *SessionStore) Save(ctx context.Context, w http.ResponseWriter, r *http.Request, set *Set) error {
	sess, err := s.sessions.Load(ctx, r)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	for _, p := range loopin.Providers() {
		for _, field := range []string{"access_token", "refresh_token", "connected_email", "expires_at"} {
			sess.Delete(key(p, field))
		}
	}
	for _, c := range set.All() {
		for k, v := range encode(c) {
			sess.Set(k, v)
		}
	}
	if set.BackendToken != "" {
		sess.Set(backendTokenKey, set.BackendToken)
	} else {
		sess.Delete(backendTokenKey)
	}
	if err := s.sessions.Save(ctx, w, sess); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
