package handler

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNilResponse indicates a handler returned nil instead of a Response.
	ErrNilResponse = errors.New("handler returned nil response")

	ErrBinderNotApplicable  = errors.New("binder not applicable")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrFailedToParseQuery   = errors.New("failed to parse query parameters")
	ErrFailedToParsePath    = errors.New("failed to parse path parameters")
)

// HTTPError carries the status and user-visible message for a failure.
// Err is logged but never rendered.
type HTTPError struct {
	Status  int
	Message string
	Details any
	// Plain renders the message as text/plain instead of a JSON body.
	Plain bool
	Err   error
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e HTTPError) Unwrap() error { return e.Err }

// BadRequest wraps a binding failure as a 400 JSON error.
func BadRequest(err error) HTTPError {
	return HTTPError{Status: http.StatusBadRequest, Message: "Invalid request", Err: err}
}
