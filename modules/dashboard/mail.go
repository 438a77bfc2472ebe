package dashboard

import (
	"fmt"
	"strings"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/handler"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/svc/mailbox"
)

type emailsRequest struct {
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
	// Provider is optional; the server is otherwise guessed from Email.
	Provider string `json:"provider"`
}

func (m *Module) emails(ctx handler.Context, req emailsRequest) handler.Response {
	if m.mail == nil {
		return handler.Fail(ctx, m.log, notEnabled("Mailbox"))
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.AccessToken == "" {
		return handler.Fail(ctx, m.log, mailboxError(mailbox.ErrMissingCredentials))
	}

	p := mailbox.ProviderForAddress(req.Email)
	if req.Provider != "" {
		var err error
		if p, err = loopin.ParseProvider(req.Provider); err != nil {
			return handler.Fail(ctx, m.log, connectError(p, fmt.Errorf("%w: %q", errUnknownRoute, req.Provider)))
		}
	}

	msgs, err := m.mail.Recent(ctx, p, req.Email, req.AccessToken)
	if err != nil {
		return handler.Fail(ctx, m.log, mailboxError(err), logger.Component("dashboard"), logger.Provider(p))
	}
	if msgs == nil {
		msgs = []mailbox.Message{}
	}
	return handler.JSON(map[string][]mailbox.Message{"emails": msgs})
}
