// Command loopin serves the Loopin dashboard backend: provider connect
// flows, calendar aggregation, mailbox reads and the summarization relay.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/modules/dashboard"
	"github.com/loopinhq/loopin/pkg/cookie"
	"github.com/loopinhq/loopin/pkg/httpserver"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/pkg/ratelimit"
	"github.com/loopinhq/loopin/pkg/redis"
	"github.com/loopinhq/loopin/pkg/requestid"
	"github.com/loopinhq/loopin/pkg/session"
	"github.com/loopinhq/loopin/svc/backend"
	"github.com/loopinhq/loopin/svc/calendar"
	"github.com/loopinhq/loopin/svc/credentials"
	"github.com/loopinhq/loopin/svc/mailbox"
	"github.com/loopinhq/loopin/svc/oauth"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("loopin failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadSettings()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewFromConfig(cfg.log, logger.WithContextExtractors(requestid.LoggerExtractor()))
	slog.SetDefault(log)

	cookies, err := cookie.NewFromConfig(cfg.cookie)
	if err != nil {
		return fmt.Errorf("cookies: %w", err)
	}

	checks := map[string]httpserver.Check{}
	var rdb *goredis.Client
	if cfg.redis.Enabled() {
		if rdb, err = redis.Connect(ctx, cfg.redis); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		checks["redis"] = redis.Healthcheck(rdb)
	}

	store, err := credentialStore(cfg, cookies, rdb)
	if err != nil {
		return err
	}
	relay := credentials.NewRelay(store, credentials.WithLogger(log))

	auth, err := oauth.New(cfg.oauth, cfg.stateSecret(), oauth.WithLogger(log))
	if err != nil {
		return fmt.Errorf("oauth: %w", err)
	}

	opts := []dashboard.Option{
		dashboard.WithLogger(log),
		dashboard.WithCalendar(calendar.New(cfg.calendar, calendar.WithLogger(log))),
		dashboard.WithMailbox(mailbox.NewReader(cfg.mailbox, mailbox.WithLogger(log))),
	}
	if cfg.limit.Enabled {
		bucket, err := ratelimit.NewBucket(ratelimit.NewMemoryStore(), cfg.limit)
		if err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
		opts = append(opts, dashboard.WithRateLimit(ratelimit.Middleware(bucket, ratelimit.ClientIP, log)))
	}
	if cfg.app.BackendEnabled {
		opts = append(opts, dashboard.WithBackend(backend.New(cfg.backend, backend.WithLogger(log))))
	}

	router := dashboard.New(cfg.dashboard, auth, relay, cookies, opts...).Router()
	router.Get("/healthz", httpserver.LivenessHandler())
	router.Get("/readyz", httpserver.ReadinessHandler(log, checks))

	for _, p := range loopin.Providers() {
		if !auth.Configured(p) {
			log.Warn("provider not configured", logger.Provider(p))
		}
	}

	log.Info("starting loopin",
		slog.String("base_url", cfg.app.BaseURL),
		slog.String("credential_store", cfg.app.CredentialStore),
	)
	return httpserver.New(cfg.http, httpserver.WithLogger(log)).Run(ctx, router)
}

// credentialStore picks where provider tokens live between requests.
func credentialStore(cfg settings, cookies *cookie.Manager, rdb *goredis.Client) (credentials.Store, error) {
	switch cfg.app.CredentialStore {
	case storeMemory:
		return credentials.NewSessionStore(session.NewManager(session.NewMemoryStore(), cookies, cfg.session)), nil
	case storeRedis:
		if rdb == nil {
			return nil, fmt.Errorf("%w: redis is not connected", errInvalidStore)
		}
		return credentials.NewSessionStore(session.NewManager(session.NewRedisStore(rdb, "loopin:session:"), cookies, cfg.session)), nil
	default:
		return credentials.NewCookieStore(cookies), nil
	}
}
