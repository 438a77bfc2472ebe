package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/logger"
)

// AuthRequest is where to send the browser to start a connect flow, and the
// state to bind to it.
type AuthRequest struct {
	URL   string
	State string
	Flow  Flow
}

// Service runs the provider connect flows: it builds authorization URLs and
// turns what the provider sends back into a loopin.Credential.
type Service struct {
	cfg       Config
	secret    []byte
	providers map[loopin.Provider]*providerConfig
	client    *http.Client
	log       *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHTTPClient sets the client used for token and identity requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.client = c
		}
	}
}

// WithEndpoints replaces the provider URLs.
func WithEndpoints(ep Endpoints) Option {
	return func(s *Service) { s.providers = buildProviders(s.cfg, ep) }
}

// WithClock overrides time.Now for state expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service. secret signs the state parameter.
func New(cfg Config, secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty state secret", ErrConfiguration)
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 10 * time.Minute
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	s := &Service{
		cfg:       cfg,
		secret:    secret,
		providers: buildProviders(cfg, DefaultEndpoints(cfg)),
		client:    &http.Client{Timeout: cfg.HTTPTimeout},
		log:       logger.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Flow returns the grant the provider's connect flow uses.
func (s *Service) Flow(p loopin.Provider) (Flow, error) {
	pc, err := s.provider(p)
	if err != nil {
		return 0, err
	}
	return pc.flow, nil
}

// Configured reports whether p has the client registration its flow needs.
func (s *Service) Configured(p loopin.Provider) bool {
	pc, ok := s.providers[p]
	return ok && pc.ready()
}

// Start builds the provider authorization URL and a fresh signed state.
func (s *Service) Start(_ context.Context, p loopin.Provider) (AuthRequest, error) {
	pc, err := s.configured(p)
	if err != nil {
		return AuthRequest{}, err
	}
	state, err := s.newState(p)
	if err != nil {
		return AuthRequest{}, fmt.Errorf("generate state: %w", err)
	}
	return AuthRequest{
		URL:   pc.oauth.AuthCodeURL(state, pc.authParams...),
		State: state,
		Flow:  pc.flow,
	}, nil
}

// Exchange completes an authorization-code return. expectedState is the
// state bound to the browser when the flow started. Tokens are only
// returned together with the resolved account email.
func (s *Service) Exchange(ctx context.Context, p loopin.Provider, code, state, expectedState string) (loopin.Credential, error) {
	pc, err := s.configured(p)
	if err != nil {
		return loopin.Credential{}, err
	}
	if code == "" {
		return loopin.Credential{}, ErrMissingCode
	}
	if err := s.verifyState(p, state, expectedState); err != nil {
		return loopin.Credential{}, err
	}

	var opts []oauth2.AuthCodeOption
	if pc.echoScope {
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(pc.oauth.Scopes, " ")))
	}

	start := s.now()
	tok, err := pc.oauth.Exchange(context.WithValue(ctx, oauth2.HTTPClient, s.client), code, opts...)
	if err != nil {
		s.log.ErrorContext(ctx, "token exchange failed",
			logger.Component("oauth"),
			logger.Provider(p),
			logger.Error(err),
		)
		return loopin.Credential{}, errors.Join(ErrTokenExchange, err)
	}
	if tok.AccessToken == "" {
		return loopin.Credential{}, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	cred := loopin.Credential{
		Provider:     p,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if cred.ConnectedEmail, err = s.resolve(ctx, pc, tok.AccessToken); err != nil {
		return loopin.Credential{}, err
	}

	s.log.InfoContext(ctx, "provider connected",
		logger.Component("oauth"),
		logger.Provider(p),
		logger.Duration(s.now().Sub(start)),
	)
	return cred, nil
}

// Accept completes an implicit-grant return, where the browser read the
// access token from the redirect fragment. A positive expiresIn sets the
// credential expiry relative to now.
func (s *Service) Accept(ctx context.Context, p loopin.Provider, accessToken string, expiresIn time.Duration, state, expectedState string) (loopin.Credential, error) {
	pc, err := s.provider(p)
	if err != nil {
		return loopin.Credential{}, err
	}
	if !pc.implicit {
		return loopin.Credential{}, fmt.Errorf("%w: %s", ErrUnsupportedFlow, p)
	}
	if err := s.verifyState(p, state, expectedState); err != nil {
		return loopin.Credential{}, err
	}
	if accessToken == "" {
		return loopin.Credential{}, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	cred := loopin.Credential{Provider: p, AccessToken: accessToken}
	if expiresIn > 0 {
		cred.ExpiresAt = s.now().Add(expiresIn)
	}
	if cred.ConnectedEmail, err = s.resolve(ctx, pc, accessToken); err != nil {
		return loopin.Credential{}, err
	}
	return cred, nil
}

func (s *Service) resolve(ctx context.Context, pc *providerConfig, accessToken string) (string, error) {
	if pc.identity == nil {
		return "", nil
	}
	email, err := pc.identity(ctx, s.client, accessToken)
	if err != nil {
		s.log.ErrorContext(ctx, "account email resolution failed",
			logger.Component("oauth"),
			logger.Provider(pc.provider),
			logger.Error(err),
		)
		return "", err
	}
	return email, nil
}

func (s *Service) provider(p loopin.Provider) (*providerConfig, error) {
	pc, ok := s.providers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, p)
	}
	return pc, nil
}

func (s *Service) configured(p loopin.Provider) (*providerConfig, error) {
	pc, err := s.provider(p)
	if err != nil {
		return nil, err
	}
	if !pc.ready() {
		if pc.flow == Implicit {
			return nil, fmt.Errorf("%w: %s client id and redirect uri are required", ErrConfiguration, p.Title())
		}
		return nil, fmt.Errorf("%w: %s client id, secret and redirect uri are required", ErrConfiguration, p.Title())
	}
	return pc, nil
}
