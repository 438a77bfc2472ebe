package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/loopinhq/loopin/pkg/cookie"
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"loopin_session"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
}

// Manager binds sessions to browsers through a signed cookie holding the
// session token.
type Manager struct {
	store   Store
	cookies *cookie.Manager
	cfg     Config
	now     func() time.Time
}

func NewManager(store Store, cookies *cookie.Manager, cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "loopin_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return &Manager{store: store, cookies: cookies, cfg: cfg, now: time.Now}
}

// Load returns the request's session, or a new empty one when the cookie
// is missing, forged, or points at an expired session. The new session is
// not persisted until Save.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.cookies.GetSigned(r, m.cfg.CookieName)
	if err != nil {
		return newSession(m.now(), m.cfg.TTL), nil
	}
	s, err := m.store.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return newSession(m.now(), m.cfg.TTL), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists s and refreshes the session cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	maxAge := int(s.ExpiresAt.Sub(m.now()).Seconds())
	m.cookies.SetSigned(w, m.cfg.CookieName, s.Token, cookie.WithMaxAge(maxAge))
	return nil
}

// Destroy deletes the request's session and its cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	m.cookies.Delete(w, m.cfg.CookieName)
	token, err := m.cookies.GetSigned(r, m.cfg.CookieName)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, token)
}
