package dashboard

import (
	"net/http"

	"github.com/loopinhq/loopin/handler"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/svc/credentials"
)

type backendSessionRequest struct {
	Email string `json:"email"`
}

type chatRequest struct {
	Query string `json:"query"`
}

// backendSession signs the user in to the backend, keeps the bearer token
// server side, and records the accounts connected so far.
func (m *Module) backendSession(ctx handler.Context, req backendSessionRequest) handler.Response {
	if m.backend == nil {
		return handler.Fail(ctx, m.log, notEnabled("Backend"))
	}
	token, err := m.backend.LoginOrSignup(ctx, req.Email)
	if err != nil {
		return handler.Fail(ctx, m.log, backendError(err), logger.Component("dashboard"))
	}
	if err := m.relay.SetBackendToken(ctx, ctx.ResponseWriter(), ctx.Request(), token); err != nil {
		return handler.Fail(ctx, m.log, handler.HTTPError{Status: http.StatusInternalServerError, Message: "Failed to store backend session", Err: err})
	}
	for _, cred := range credentials.FromContext(ctx).All() {
		m.forwardAccount(ctx, token, cred)
	}
	return handler.JSON(map[string]bool{"connected": true})
}

func (m *Module) summary(ctx handler.Context, _ struct{}) handler.Response {
	if m.backend == nil {
		return handler.Fail(ctx, m.log, notEnabled("Backend"))
	}
	doc, err := m.backend.UnifiedSummary(ctx, credentials.FromContext(ctx).BackendToken)
	if err != nil {
		return handler.Fail(ctx, m.log, backendError(err), logger.Component("dashboard"))
	}
	return handler.RawJSON(http.StatusOK, doc)
}

func (m *Module) chat(ctx handler.Context, req chatRequest) handler.Response {
	if m.backend == nil {
		return handler.Fail(ctx, m.log, notEnabled("Backend"))
	}
	answer, err := m.backend.RAGSummary(ctx, credentials.FromContext(ctx).BackendToken, req.Query)
	if err != nil {
		return handler.Fail(ctx, m.log, backendError(err), logger.Component("dashboard"))
	}
	return handler.JSON(map[string]string{"summary": answer})
}
