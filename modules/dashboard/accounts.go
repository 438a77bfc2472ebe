package dashboard

import (
	"fmt"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/handler"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/svc/credentials"
)

const (
	statusConnected = "connected"
	statusExpired   = "expired"
)

type account struct {
	Provider loopin.Provider `json:"provider"`
	Email    string          `json:"email,omitempty"`
	Status   string          `json:"status"`
}

func (m *Module) connectedAccounts(set *credentials.Set) []account {
	now := m.now()
	out := make([]account, 0, set.Len())
	for _, c := range set.All() {
		status := statusConnected
		if c.Expired(now) {
			status = statusExpired
		}
		out = append(out, account{Provider: c.Provider, Email: c.ConnectedEmail, Status: status})
	}
	return out
}

func (m *Module) accounts(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(map[string][]account{
		"accounts": m.connectedAccounts(credentials.FromContext(ctx)),
	})
}

func (m *Module) disconnect(ctx handler.Context, req providerRequest) handler.Response {
	p, err := loopin.ParseProvider(req.Provider)
	if err != nil {
		return handler.Fail(ctx, m.log, connectError(p, fmt.Errorf("%w: %q", errUnknownRoute, req.Provider)), logger.Component("dashboard"))
	}
	if err := m.relay.ClearTokens(ctx, ctx.ResponseWriter(), ctx.Request(), p); err != nil {
		e := connectError(p, err)
		e.Plain = false
		return handler.Fail(ctx, m.log, e, logger.Component("dashboard"), logger.Provider(p))
	}
	return handler.Empty()
}

func (m *Module) dashboardPage(ctx handler.Context, _ struct{}) handler.Response {
	set := credentials.FromContext(ctx)
	return handler.Templ(dashboardView(m.connectedAccounts(set), set.BackendToken != ""))
}
