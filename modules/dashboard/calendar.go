package dashboard

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/handler"
	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/svc/calendar"
	"github.com/loopinhq/loopin/svc/credentials"
)

type eventsResponse struct {
	Events []loopin.CalendarEvent   `json:"events"`
	Errors map[loopin.Source]string `json:"errors"`
}

func bearer(r *http.Request) (string, bool) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	tok = strings.TrimSpace(tok)
	return tok, ok && tok != ""
}

// rawEvents proxies a provider's event list for the bearer token the
// caller holds.
func (m *Module) rawEvents(src loopin.Source) handler.HandlerFunc[struct{}] {
	return func(ctx handler.Context, _ struct{}) handler.Response {
		if m.calendar == nil {
			return handler.Fail(ctx, m.log, notEnabled("Calendar"))
		}
		tok, ok := bearer(ctx.Request())
		if !ok {
			return handler.Fail(ctx, m.log, calendarError(src, errMissingBearer))
		}
		body, err := m.calendar.Raw(ctx, src, tok)
		if err != nil {
			return handler.Fail(ctx, m.log, calendarError(src, err),
				logger.Component("dashboard"),
				slog.String("source", string(src)),
			)
		}
		return handler.RawJSON(http.StatusOK, body)
	}
}

// unifiedEvents returns the normalized events of every connected calendar.
func (m *Module) unifiedEvents(ctx handler.Context, _ struct{}) handler.Response {
	if m.calendar == nil {
		return handler.Fail(ctx, m.log, notEnabled("Calendar"))
	}
	set := credentials.FromContext(ctx)
	res := m.calendar.Events(ctx, calendar.TokensFor(set.All()))

	out := eventsResponse{Events: res.Events, Errors: res.Errors}
	if out.Events == nil {
		out.Events = []loopin.CalendarEvent{}
	}
	if out.Errors == nil {
		out.Errors = map[loopin.Source]string{}
	}
	return handler.JSON(out)
}
