package credentials

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/logger"
)

// Store persists a Set between requests of one browser session.
type Store interface {
	Load(ctx context.Context, r *http.Request) (*Set, error)
	Save(ctx context.Context, w http.ResponseWriter, r *http.Request, set *Set) error
}

type contextKey struct{}

// FromContext returns the Set loaded by Middleware, or an empty Set.
func FromContext(ctx context.Context) *Set {
	if set, ok := ctx.Value(contextKey{}).(*Set); ok {
		return set
	}
	return NewSet()
}

// Relay moves provider credentials between connect callbacks and the
// requests that use them.
type Relay struct {
	store Store
	log   *slog.Logger
}

type RelayOption func(*Relay)

func WithLogger(l *slog.Logger) RelayOption {
	return func(r *Relay) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRelay(store Store, opts ...RelayOption) *Relay {
	r := &Relay{store: store, log: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Middleware loads the request's Set into its context. A store failure is
// logged and treated as an empty Set.
func (rl *Relay) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set, err := rl.store.Load(r.Context(), r)
		if err != nil {
			rl.log.ErrorContext(r.Context(), "load credentials", logger.Component("credentials"), logger.Error(err))
			set = NewSet()
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, set)))
	})
}

// Load returns the request's Set, from the context when Middleware ran.
func (rl *Relay) Load(ctx context.Context, r *http.Request) (*Set, error) {
	if set, ok := ctx.Value(contextKey{}).(*Set); ok {
		return set, nil
	}
	return rl.store.Load(ctx, r)
}

// SetTokens stores cred for its provider, replacing an earlier one.
func (rl *Relay) SetTokens(ctx context.Context, w http.ResponseWriter, r *http.Request, cred loopin.Credential) error {
	return rl.update(ctx, w, r, func(set *Set) error {
		return set.Put(cred.Provider, cred)
	})
}

// ClearTokens removes p's credential.
func (rl *Relay) ClearTokens(ctx context.Context, w http.ResponseWriter, r *http.Request, p loopin.Provider) error {
	return rl.update(ctx, w, r, func(set *Set) error {
		set.Remove(p)
		return nil
	})
}

// SetBackendToken stores the summarization backend bearer token.
func (rl *Relay) SetBackendToken(ctx context.Context, w http.ResponseWriter, r *http.Request, token string) error {
	return rl.update(ctx, w, r, func(set *Set) error {
		set.BackendToken = token
		return nil
	})
}

// update applies fn to a copy and only publishes it once saved.
func (rl *Relay) update(ctx context.Context, w http.ResponseWriter, r *http.Request, fn func(*Set) error) error {
	current, err := rl.Load(ctx, r)
	if err != nil {
		return err
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := rl.store.Save(ctx, w, r, next); err != nil {
		rl.log.ErrorContext(ctx, "save credentials", logger.Component("credentials"), logger.Error(err))
		return err
	}
	*current = *next
	return nil
}
