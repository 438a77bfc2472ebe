package backend

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken = errors.New("backend: missing bearer token")
	ErrMissingInput = errors.New("backend: missing required input")
	ErrRequest      = errors.New("backend: request failed")
	ErrTimeout      = errors.New("backend: request timeout")
	ErrCircuitOpen  = errors.New("backend: circuit breaker is open")
	ErrDecode       = errors.New("backend: invalid response body")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// permanent reports whether retrying the request cannot change the outcome.
func (e *APIError) permanent() bool {
	if e.Status >= 400 && e.Status < 500 {
		switch e.Status {
		case 408, 425, 429:
			return false
		}
		return true
	}
	return false
}
