package calendar

import (
	"errors"
	"fmt"

	"github.com/loopinhq/loopin"
)

var (
	ErrMissingToken = errors.New("calendar: missing access token")
	ErrNoCalendar   = errors.New("calendar: no calendar found")
	ErrUnsupported  = errors.New("calendar: provider has no calendar support")
)

// ProviderAPIError is a non-2xx answer from a provider calendar API.
type ProviderAPIError struct {
	Provider loopin.Provider
	Status   int
	Body     string
}

func (e *ProviderAPIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API error: %d", e.Provider.Title(), e.Status)
	}
	return fmt.Sprintf("%s API error: %d - %s", e.Provider.Title(), e.Status, e.Body)
}
