package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/loopinhq/loopin/modules/dashboard"
	"github.com/loopinhq/loopin/pkg/config"
	"github.com/loopinhq/loopin/pkg/cookie"
	"github.com/loopinhq/loopin/pkg/httpserver"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/pkg/ratelimit"
	"github.com/loopinhq/loopin/pkg/redis"
	"github.com/loopinhq/loopin/pkg/session"
	"github.com/loopinhq/loopin/svc/backend"
	"github.com/loopinhq/loopin/svc/calendar"
	"github.com/loopinhq/loopin/svc/mailbox"
	"github.com/loopinhq/loopin/svc/oauth"
)

// Credential store kinds accepted by CREDENTIAL_STORE.
const (
	storeCookie = "cookie"
	storeMemory = "memory"
	storeRedis  = "redis"
)

var errInvalidStore = errors.New("invalid credential store")

// AppConfig holds the process level settings.
type AppConfig struct {
	BaseURL         string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	CredentialStore string `env:"CREDENTIAL_STORE" envDefault:"cookie"`
	// StateSecret signs the OAuth state; the first cookie secret is used
	// when empty.
	StateSecret string `env:"STATE_SECRET"`
	// BackendEnabled turns on the summarization relay routes.
	BackendEnabled bool `env:"BACKEND_ENABLED" envDefault:"true"`
}

type settings struct {
	app       AppConfig
	log       logger.Config
	http      httpserver.Config
	cookie    cookie.Config
	session   session.Config
	redis     redis.Config
	limit     ratelimit.Config
	oauth     oauth.Config
	calendar  calendar.Config
	mailbox   mailbox.Config
	backend   backend.Config
	dashboard dashboard.Config
}

func loadSettings() (settings, error) {
	var s settings
	err := errors.Join(
		config.Load(&s.app),
		config.Load(&s.log),
		config.Load(&s.http),
		config.Load(&s.cookie),
		config.Load(&s.session),
		config.Load(&s.redis),
		config.Load(&s.limit),
		config.Load(&s.oauth),
		config.Load(&s.calendar),
		config.Load(&s.mailbox),
		config.Load(&s.backend),
		config.Load(&s.dashboard),
	)
	if err != nil {
		return settings{}, err
	}
	if err := s.validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (s settings) validate() error {
	switch s.app.CredentialStore {
	case storeCookie, storeMemory:
	case storeRedis:
		if !s.redis.Enabled() {
			return fmt.Errorf("%w: %q needs REDIS_URL", errInvalidStore, storeRedis)
		}
	default:
		return fmt.Errorf("%w: %q", errInvalidStore, s.app.CredentialStore)
	}
	return nil
}

// stateSecret returns the key for signing OAuth state values.
func (s settings) stateSecret() []byte {
	if s.app.StateSecret != "" {
		return []byte(s.app.StateSecret)
	}
	first, _, _ := strings.Cut(s.cookie.Secrets, ",")
	return []byte(strings.TrimSpace(first))
}
