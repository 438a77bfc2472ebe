package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/handler"
	"github.com/loopinhq/loopin/pkg/requestid"
)

// callbackPaths are the redirect URIs registered with each provider.
var callbackPaths = map[loopin.Provider]string{
	loopin.ProviderGoogle:  "/auth/callback/google",
	loopin.ProviderOutlook: "/oauth/callback/outlook",
	loopin.ProviderZoho:    "/auth/zoho/callback",
	loopin.ProviderYahoo:   "/auth/yahoo/callback",
}

// Router mounts every dashboard route. Extra handlers, e.g. health checks,
// are mounted outside the credential middleware.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(m.requestLogger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(m.relay.Middleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
		r.Get("/dashboard", handler.Wrap(m.dashboardPage))

		r.Get("/auth/{provider}/start", handler.Wrap(m.start,
			handler.WithBinders[providerRequest](handler.BindPath(chi.URLParam)),
		))
		for p, path := range callbackPaths {
			r.Get(path, handler.Wrap(m.callback(p), handler.WithBinders[callbackRequest](handler.BindQuery())))
		}
		r.Get("/zoho-callback", handler.Wrap(m.zohoFragmentPage))
		r.Post("/auth/zoho/implicit", handler.Wrap(m.zohoImplicit,
			handler.WithBinders[implicitRequest](handler.BindJSON()),
			handler.WithErrorHandler[implicitRequest](handler.NewErrorHandler(m.log)),
		))

		r.Get("/accounts", handler.Wrap(m.accounts))
		r.Delete("/accounts/{provider}", handler.Wrap(m.disconnect,
			handler.WithBinders[providerRequest](handler.BindPath(chi.URLParam)),
		))

		r.Get("/outlook/events", handler.Wrap(m.rawEvents(loopin.SourceOutlook)))
		r.Get("/zoho/events", handler.Wrap(m.rawEvents(loopin.SourceZoho)))
		r.Get("/calendar/events", handler.Wrap(m.unifiedEvents))

		// these call IMAP servers or the backend
		r.Group(func(r chi.Router) {
			if m.limit != nil {
				r.Use(m.limit)
			}
			r.Post("/emails", handler.Wrap(m.emails,
				handler.WithBinders[emailsRequest](handler.BindJSON()),
				handler.WithErrorHandler[emailsRequest](handler.NewErrorHandler(m.log)),
			))

			r.Post("/backend/session", handler.Wrap(m.backendSession,
				handler.WithBinders[backendSessionRequest](handler.BindJSON()),
				handler.WithErrorHandler[backendSessionRequest](handler.NewErrorHandler(m.log)),
			))
			r.Post("/summary", handler.Wrap(m.summary))
			r.Post("/chat", handler.Wrap(m.chat,
				handler.WithBinders[chatRequest](handler.BindJSON()),
				handler.WithErrorHandler[chatRequest](handler.NewErrorHandler(m.log)),
			))
		})
	})

	return r
}
