package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/cookie"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/svc/backend"
	"github.com/loopinhq/loopin/svc/calendar"
	"github.com/loopinhq/loopin/svc/credentials"
	"github.com/loopinhq/loopin/svc/mailbox"
	"github.com/loopinhq/loopin/svc/oauth"
)

// Authenticator runs provider connect flows. *oauth.Service implements it.
type Authenticator interface {
	Start(ctx context.Context, p loopin.Provider) (oauth.AuthRequest, error)
	Exchange(ctx context.Context, p loopin.Provider, code, state, expectedState string) (loopin.Credential, error)
	Accept(ctx context.Context, p loopin.Provider, accessToken string, expiresIn time.Duration, state, expectedState string) (loopin.Credential, error)
}

// Calendar aggregates provider events. *calendar.Service implements it.
type Calendar interface {
	Events(ctx context.Context, tokens map[loopin.Source]string) calendar.Result
	Raw(ctx context.Context, src loopin.Source, accessToken string) ([]byte, error)
}

// Mailbox reads recent mail. *mailbox.Reader implements it.
type Mailbox interface {
	Recent(ctx context.Context, p loopin.Provider, email, accessToken string) ([]mailbox.Message, error)
}

// Backend relays to the summarization service. *backend.Client implements it.
type Backend interface {
	LoginOrSignup(ctx context.Context, email string) (string, error)
	ConnectAccount(ctx context.Context, token string, acc backend.Account) error
	UnifiedSummary(ctx context.Context, token string) (json.RawMessage, error)
	RAGSummary(ctx context.Context, token, query string) (string, error)
}

var (
	_ Authenticator = (*oauth.Service)(nil)
	_ Calendar      = (*calendar.Service)(nil)
	_ Mailbox       = (*mailbox.Reader)(nil)
	_ Backend       = (*backend.Client)(nil)
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	// StateTTL bounds the lifetime of the state cookie; keep it equal to the
	// oauth state TTL.
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"10m"`
	// ConnectTimeout bounds the best-effort backend call after a connect.
	ConnectTimeout time.Duration `env:"BACKEND_CONNECT_TIMEOUT" envDefault:"5s"`
}

// Module holds the dashboard handlers and their collaborators.
type Module struct {
	cfg      Config
	auth     Authenticator
	relay    *credentials.Relay
	cookies  *cookie.Manager
	calendar Calendar
	mail     Mailbox
	backend  Backend
	limit    func(http.Handler) http.Handler
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Module)

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.log = l
		}
	}
}

func WithCalendar(c Calendar) Option {
	return func(m *Module) { m.calendar = c }
}

func WithMailbox(mb Mailbox) Option {
	return func(m *Module) { m.mail = mb }
}

// WithBackend enables the backend routes and the connected-account record
// sent after every provider connect.
func WithBackend(b Backend) Option {
	return func(m *Module) { m.backend = b }
}

// WithRateLimit guards the mailbox and backend routes with mw.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(m *Module) { m.limit = mw }
}

func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// New returns a Module. The connect flows need auth, relay and cookies;
// calendar, mailbox and backend routes answer 501 until their collaborator
// is set.
func New(cfg Config, auth Authenticator, relay *credentials.Relay, cookies *cookie.Manager, opts ...Option) *Module {
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 10 * time.Minute
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	m := &Module{
		cfg:     cfg,
		auth:    auth,
		relay:   relay,
		cookies: cookies,
		log:     logger.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
