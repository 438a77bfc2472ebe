package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const minSecretLength = 32

// Config is loaded from the environment by pkg/config.
// COOKIE_SECRETS is a comma-separated list; the first secret signs and
// encrypts, the rest are only accepted when reading (key rotation).
type Config struct {
	Secrets  string `env:"COOKIE_SECRETS,required"`
	Domain   string `env:"COOKIE_DOMAIN"`
	Secure   bool   `env:"COOKIE_SECURE" envDefault:"true"`
	MaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"2592000"`
	SameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

// Options are the attributes applied to every cookie the Manager writes.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option overrides one attribute for a single Set call.
type Option func(*Options)

func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

func WithHTTPOnly(v bool) Option {
	return func(o *Options) { o.HttpOnly = v }
}

func WithSameSite(s http.SameSite) Option {
	return func(o *Options) { o.SameSite = s }
}

// Manager reads and writes signed or encrypted cookies.
type Manager struct {
	keys     [][]byte
	defaults Options
}

// New builds a Manager. Every secret must be at least 32 bytes.
func New(secrets []string, defaults Options) (*Manager, error) {
	var keys [][]byte
	for i, s := range secrets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		key := sha256.Sum256([]byte(s))
		keys = append(keys, key[:])
	}
	if len(keys) == 0 {
		return nil, ErrNoSecret
	}
	if defaults.Path == "" {
		defaults.Path = "/"
	}
	if defaults.SameSite == 0 {
		defaults.SameSite = http.SameSiteLaxMode
	}
	return &Manager{keys: keys, defaults: defaults}, nil
}

// NewFromConfig builds a Manager from Config. Cookies are always HttpOnly.
func NewFromConfig(cfg Config) (*Manager, error) {
	return New(strings.Split(cfg.Secrets, ","), Options{
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.SameSite),
	})
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := m.defaults
	for _, opt := range opts {
		opt(&o)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

// Get returns a plain cookie value or ErrCookieNotFound.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie in the browser.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

// SetSigned writes value with an HMAC-SHA256 tag bound to the cookie name.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	enc := base64.RawURLEncoding.EncodeToString([]byte(value))
	m.Set(w, name, enc+"."+m.mac(m.keys[0], name, enc), opts...)
}

// GetSigned verifies and returns a value written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	enc, sig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	for _, key := range m.keys {
		if hmac.Equal([]byte(sig), []byte(m.mac(key, name, enc))) {
			value, err := base64.RawURLEncoding.DecodeString(enc)
			if err != nil {
				return "", ErrInvalidFormat
			}
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

func (m *Manager) mac(key []byte, name, enc string) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(enc))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// SetEncrypted writes value sealed with AES-256-GCM. The cookie name is
// the additional data, so a ciphertext cannot be replayed under another name.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	sealed, err := m.Seal(name, []byte(value))
	if err != nil {
		return err
	}
	m.Set(w, name, sealed, opts...)
	return nil
}

// GetEncrypted opens a value written by SetEncrypted.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	plain, err := m.Open(name, raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Seal encrypts plain with the primary key, binding it to name.
func (m *Manager) Seal(name string, plain []byte) (string, error) {
	gcm, err := newGCM(m.keys[0])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(gcm.Seal(nonce, nonce, plain, []byte(name))), nil
}

// Open decrypts a value produced by Seal with any configured key.
func (m *Manager) Open(name, sealed string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	for _, key := range m.keys {
		gcm, err := newGCM(key)
		if err != nil {
			return nil, err
		}
		if len(data) < gcm.NonceSize() {
			return nil, ErrInvalidFormat
		}
		nonce, ct := data[:gcm.NonceSize()], data[gcm.NonceSize():]
		if plain, err := gcm.Open(nil, nonce, ct, []byte(name)); err == nil {
			return plain, nil
		}
	}
	return nil, ErrDecryptionFailed
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
