package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/handler"
	"github.com/loopinhq/loopin/pkg/cookie"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/svc/backend"
	"github.com/loopinhq/loopin/svc/credentials"
)

type providerRequest struct {
	Provider string `path:"provider"`
}

type callbackRequest struct {
	Code  string `query:"code"`
	State string `query:"state"`
	Error string `query:"error"`
}

type implicitRequest struct {
	AccessToken string `json:"access_token"`
	State       string `json:"state"`
	// ExpiresIn is the fragment's lifetime in seconds, as sent.
	ExpiresIn string `json:"expires_in"`
}

func (r implicitRequest) lifetime() time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(r.ExpiresIn))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func stateCookie(p loopin.Provider) string {
	return "oauth_state_" + p.Key()
}

// start redirects to the provider consent screen and binds the flow's
// state to this browser.
func (m *Module) start(ctx handler.Context, req providerRequest) handler.Response {
	p, err := loopin.ParseProvider(req.Provider)
	if err != nil {
		return handler.Fail(ctx, m.log, connectError(p, fmt.Errorf("%w: %q", errUnknownRoute, req.Provider)), logger.Component("dashboard"))
	}
	ar, err := m.auth.Start(ctx, p)
	if err != nil {
		return handler.Fail(ctx, m.log, connectError(p, err), logger.Component("dashboard"), logger.Provider(p))
	}
	m.cookies.SetSigned(ctx.ResponseWriter(), stateCookie(p), ar.State,
		cookie.WithMaxAge(int(m.cfg.StateTTL.Seconds())),
		cookie.WithHTTPOnly(true),
	)
	return handler.Redirect(ar.URL, http.StatusFound)
}

// callback completes an authorization-code return for p.
func (m *Module) callback(p loopin.Provider) handler.HandlerFunc[callbackRequest] {
	return func(ctx handler.Context, req callbackRequest) handler.Response {
		expected := m.takeState(ctx, p)
		code := req.Code
		if code == "" && req.Error != "" {
			m.log.WarnContext(ctx, "provider denied authorization",
				logger.Component("dashboard"),
				logger.Provider(p),
				logger.Error(fmt.Errorf("provider error %q", req.Error)),
			)
		}
		cred, err := m.auth.Exchange(ctx, p, code, req.State, expected)
		if err != nil {
			return handler.Fail(ctx, m.log, connectError(p, err), logger.Component("dashboard"), logger.Provider(p))
		}
		if err := m.persist(ctx, cred); err != nil {
			return handler.Fail(ctx, m.log, connectError(p, err), logger.Component("dashboard"), logger.Provider(p))
		}
		return handler.Redirect("/dashboard", http.StatusFound)
	}
}

// zohoImplicit receives the token the fragment page read from the Zoho
// implicit-grant redirect.
func (m *Module) zohoImplicit(ctx handler.Context, req implicitRequest) handler.Response {
	p := loopin.ProviderZoho
	expected := m.takeState(ctx, p)
	cred, err := m.auth.Accept(ctx, p, req.AccessToken, req.lifetime(), req.State, expected)
	if err == nil {
		err = m.persist(ctx, cred)
	}
	if err != nil {
		e := connectError(p, err)
		e.Plain = false
		return handler.Fail(ctx, m.log, e, logger.Component("dashboard"), logger.Provider(p))
	}
	return handler.JSON(map[string]string{"redirect": "/dashboard"})
}

func (m *Module) zohoFragmentPage(handler.Context, struct{}) handler.Response {
	return handler.Templ(zohoCallbackPage())
}

// takeState returns the state bound to this browser for p and clears it;
// a state is good for one callback only.
func (m *Module) takeState(ctx handler.Context, p loopin.Provider) string {
	name := stateCookie(p)
	state, err := m.cookies.GetSigned(ctx.Request(), name)
	if err != nil {
		return ""
	}
	m.cookies.Delete(ctx.ResponseWriter(), name)
	return state
}

// persist stores cred for the session and tells the backend about the
// account when the session has a backend token.
func (m *Module) persist(ctx handler.Context, cred loopin.Credential) error {
	if err := m.relay.SetTokens(ctx, ctx.ResponseWriter(), ctx.Request(), cred); err != nil {
		return err
	}
	m.log.InfoContext(ctx, "provider credential stored",
		logger.Component("dashboard"),
		logger.Provider(cred.Provider),
	)
	m.forwardAccount(ctx, credentials.FromContext(ctx).BackendToken, cred)
	return nil
}

// forwardAccount sends the connected-account record to the backend. It is
// best effort: failures are logged and never fail the connect flow.
func (m *Module) forwardAccount(ctx context.Context, token string, cred loopin.Credential) {
	if m.backend == nil || token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()
	if err := m.backend.ConnectAccount(ctx, token, backend.AccountFromCredential(cred)); err != nil {
		m.log.WarnContext(ctx, "backend account record failed",
			logger.Component("dashboard"),
			logger.Provider(cred.Provider),
			logger.Error(err),
		)
	}
}
