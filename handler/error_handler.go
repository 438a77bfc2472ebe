package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/loopinhq/loopin/pkg/logger"
)

// errorResponse turns err into the response the client sees. Only
// HTTPError messages are shown; everything else is a generic 500.
func errorResponse(err error) Response {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		return JSONError(http.StatusInternalServerError, "Internal server error", nil)
	}
	status := httpErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	msg := httpErr.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	if httpErr.Plain {
		return Text(status, msg)
	}
	return JSONError(status, msg, httpErr.Details)
}

func logLevel(status int) slog.Level {
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// Fail logs err and returns the response for it. Handlers use it to turn
// service errors into answers without losing the cause.
func Fail(ctx Context, log *slog.Logger, err error, attrs ...slog.Attr) Response {
	status := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr.Status != 0 {
		status = httpErr.Status
	}
	r := ctx.Request()
	attrs = append(attrs,
		logger.Error(err),
		logger.Status(status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	log.LogAttrs(r.Context(), logLevel(status), "request error", attrs...)
	return errorResponse(err)
}

// NewErrorHandler logs binding and rendering failures and answers with the
// matching error response.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		resp := Fail(ctx, log, err, logger.Component("handler"))
		if renderErr := resp.Render(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
			log.ErrorContext(ctx, "failed to render error response", logger.Error(renderErr))
		}
	}
}
