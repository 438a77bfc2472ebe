package calendar

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/async"
	"github.com/loopinhq/loopin/pkg/logger"
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	FetchTimeout    time.Duration `env:"CALENDAR_FETCH_TIMEOUT" envDefault:"15s"`
	LookBack        time.Duration `env:"CALENDAR_LOOKBACK" envDefault:"168h"`
	LookAhead       time.Duration `env:"CALENDAR_LOOKAHEAD" envDefault:"720h"`
	MaxResults      int           `env:"CALENDAR_MAX_RESULTS" envDefault:"50"`
	TimeZone        string        `env:"CALENDAR_TIMEZONE" envDefault:"Local"`
	GoogleAPIURL    string        `env:"GOOGLE_CALENDAR_API_URL"`
	GraphAPIURL     string        `env:"GRAPH_API_URL" envDefault:"https://graph.microsoft.com/v1.0"`
	ZohoCalendarURL string        `env:"ZOHO_CALENDAR_API_URL" envDefault:"https://calendar.zoho.in"`
}

// Fetcher retrieves one provider's events for an access token.
type Fetcher interface {
	Source() loopin.Source
	Fetch(ctx context.Context, accessToken string) (Raw, error)
}

// RawFetcher can also return the provider's response body as is.
type RawFetcher interface {
	Fetcher
	FetchRaw(ctx context.Context, accessToken string) ([]byte, error)
}

// Result is the unified event list plus a message per failed source.
type Result struct {
	Events []loopin.CalendarEvent   `json:"events"`
	Errors map[loopin.Source]string `json:"errors,omitempty"`
}

// Service fetches every connected calendar concurrently and normalizes the
// combined result.
type Service struct {
	fetchers map[loopin.Source]Fetcher
	timeout  time.Duration
	loc      *time.Location
	log      *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFetcher registers or replaces the fetcher for f.Source().
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetchers[f.Source()] = f }
}

// New builds a Service with the Google, Outlook and Zoho fetchers.
func New(cfg Config, opts ...Option) *Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil || cfg.TimeZone == "" {
		loc = time.Local
	}

	client := &http.Client{Timeout: cfg.FetchTimeout}
	window := Window{LookBack: cfg.LookBack, LookAhead: cfg.LookAhead, MaxResults: cfg.MaxResults}

	s := &Service{
		fetchers: map[loopin.Source]Fetcher{
			loopin.SourceGoogle:  NewGoogleFetcher(client, cfg.GoogleAPIURL, window),
			loopin.SourceOutlook: NewOutlookFetcher(client, cfg.GraphAPIURL, window),
			loopin.SourceZoho:    NewZohoFetcher(client, cfg.ZohoCalendarURL, window, loc),
		},
		timeout: cfg.FetchTimeout,
		loc:     loc,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events fetches every source that has a token. A failing or slow source
// only fills its own Errors slot; the others still contribute events.
func (s *Service) Events(ctx context.Context, tokens map[loopin.Source]string) Result {
	order := []loopin.Source{loopin.SourceGoogle, loopin.SourceZoho, loopin.SourceOutlook}

	var (
		sources []loopin.Source
		futures []*async.Future[Raw]
	)
	for _, src := range order {
		tok := tokens[src]
		f, ok := s.fetchers[src]
		if tok == "" || !ok {
			continue
		}
		sources = append(sources, src)
		futures = append(futures, async.Go(ctx, s.timeout, func(ctx context.Context) (Raw, error) {
			return f.Fetch(ctx, tok)
		}))
	}

	var (
		raw  Raw
		errs map[loopin.Source]string
	)
	for i, res := range async.Settle(futures...) {
		if res.Err != nil {
			if errs == nil {
				errs = make(map[loopin.Source]string)
			}
			errs[sources[i]] = res.Err.Error()
			s.log.WarnContext(ctx, "calendar fetch failed",
				logger.Component("calendar"),
				slog.String("source", string(sources[i])),
				logger.Error(res.Err),
			)
			continue
		}
		raw.merge(res.Value)
	}
	return Result{Events: Normalize(raw, s.loc), Errors: errs}
}

// Raw returns a provider's events response body unchanged.
func (s *Service) Raw(ctx context.Context, src loopin.Source, accessToken string) ([]byte, error) {
	f, ok := s.fetchers[src].(RawFetcher)
	if !ok {
		return nil, ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return f.FetchRaw(ctx, accessToken)
}

// TokensFor maps stored provider credentials to calendar sources.
func TokensFor(creds []loopin.Credential) map[loopin.Source]string {
	out := make(map[loopin.Source]string, len(creds))
	for _, c := range creds {
		if src, ok := loopin.SourceOf(c.Provider); ok && c.AccessToken != "" {
			out[src] = c.AccessToken
		}
	}
	return out
}
