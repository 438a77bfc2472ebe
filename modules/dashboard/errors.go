package dashboard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/handler"
	"github.com/loopinhq/loopin/svc/backend"
	"github.com/loopinhq/loopin/svc/calendar"
	"github.com/loopinhq/loopin/svc/mailbox"
	"github.com/loopinhq/loopin/svc/oauth"
)

var (
	errNotEnabled    = errors.New("dashboard: feature not configured")
	errMissingBearer = errors.New("dashboard: missing bearer token")
	errUnknownRoute  = errors.New("dashboard: unknown provider")
)

// connectError maps a connect-flow failure. Callback answers stay generic;
// the cause is only logged.
func connectError(p loopin.Provider, err error) handler.HTTPError {
	e := handler.HTTPError{Status: http.StatusInternalServerError, Plain: true, Err: err}
	switch {
	case errors.Is(err, oauth.ErrConfiguration):
		e.Message = fmt.Sprintf("Missing %s OAuth env vars", p.Title())
	case errors.Is(err, oauth.ErrUnsupportedProvider), errors.Is(err, errUnknownRoute):
		return handler.HTTPError{Status: http.StatusNotFound, Message: "Unknown provider", Err: err}
	case errors.Is(err, oauth.ErrUnsupportedFlow):
		return handler.HTTPError{Status: http.StatusBadRequest, Message: "Unsupported OAuth flow", Err: err}
	case errors.Is(err, oauth.ErrMissingCode):
		return handler.HTTPError{Status: http.StatusBadRequest, Message: "No code provided", Err: err}
	case errors.Is(err, oauth.ErrInvalidState):
		return handler.HTTPError{Status: http.StatusBadRequest, Message: "Invalid OAuth state", Err: err}
	case errors.Is(err, oauth.ErrTokenExchange):
		e.Message = fmt.Sprintf("Failed to get %s access token", p.Title())
	default:
		e.Message = "OAuth error"
	}
	return e
}

// calendarError forwards provider statuses with the provider's body as
// details.
func calendarError(src loopin.Source, err error) handler.HTTPError {
	var apiErr *calendar.ProviderAPIError
	switch {
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return handler.HTTPError{
			Status:  status,
			Message: fmt.Sprintf("%s API error: %d", apiErr.Provider.Title(), apiErr.Status),
			Details: apiErr.Body,
			Err:     err,
		}
	case errors.Is(err, calendar.ErrNoCalendar):
		return handler.HTTPError{Status: http.StatusNotFound, Message: "No Zoho calendar UID found", Err: err}
	case errors.Is(err, calendar.ErrMissingToken), errors.Is(err, errMissingBearer):
		return handler.HTTPError{Status: http.StatusUnauthorized, Message: "No valid authorization header", Err: err}
	case errors.Is(err, calendar.ErrUnsupported):
		return handler.HTTPError{Status: http.StatusNotFound, Message: "Calendar not supported", Err: err}
	}
	return handler.HTTPError{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("Failed to fetch %s events", sourceTitle(src)),
		Err:     err,
	}
}

func mailboxError(err error) handler.HTTPError {
	switch {
	case errors.Is(err, mailbox.ErrMissingCredentials):
		return handler.HTTPError{Status: http.StatusBadRequest, Message: "Missing email or access_token", Err: err}
	case errors.Is(err, mailbox.ErrAuthentication):
		return handler.HTTPError{Status: http.StatusUnauthorized, Message: "Mailbox authentication failed", Err: err}
	}
	return handler.HTTPError{Status: http.StatusInternalServerError, Message: "Failed to fetch emails", Err: err}
}

func backendError(err error) handler.HTTPError {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrMissingToken):
		return handler.HTTPError{Status: http.StatusUnauthorized, Message: "Backend session required", Err: err}
	case errors.Is(err, backend.ErrMissingInput):
		return handler.HTTPError{Status: http.StatusBadRequest, Message: "Missing required field", Err: err}
	case errors.Is(err, backend.ErrCircuitOpen):
		return handler.HTTPError{Status: http.StatusServiceUnavailable, Message: "Backend unavailable", Err: err}
	case errors.As(err, &apiErr):
		return handler.HTTPError{Status: http.StatusBadGateway, Message: "Backend error", Details: apiErr.Body, Err: err}
	case errors.Is(err, backend.ErrTimeout):
		return handler.HTTPError{Status: http.StatusGatewayTimeout, Message: "Backend timeout", Err: err}
	}
	return handler.HTTPError{Status: http.StatusBadGateway, Message: "Backend error", Err: err}
}

func notEnabled(what string) handler.HTTPError {
	return handler.HTTPError{
		Status:  http.StatusNotImplemented,
		Message: what + " is not configured",
		Err:     errNotEnabled,
	}
}

func sourceTitle(src loopin.Source) string {
	switch src {
	case loopin.SourceGoogle:
		return loopin.ProviderGoogle.Title()
	case loopin.SourceOutlook:
		return loopin.ProviderOutlook.Title()
	case loopin.SourceZoho:
		return loopin.ProviderZoho.Title()
	}
	return string(src)
}
