package calendar

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/loopinhq/loopin"
)

// GoogleFetcher lists the primary Google calendar through the Calendar API
// client.
type GoogleFetcher struct {
	client   *http.Client
	endpoint string
	window   Window
}

func NewGoogleFetcher(client *http.Client, endpoint string, window Window) *GoogleFetcher {
	return &GoogleFetcher{client: client, endpoint: endpoint, window: window}
}

func (f *GoogleFetcher) Source() loopin.Source { return loopin.SourceGoogle }

func (f *GoogleFetcher) Fetch(ctx context.Context, accessToken string) (Raw, error) {
	if accessToken == "" {
		return Raw{}, ErrMissingToken
	}

	// oauth2.NewClient wraps the base client found in the context.
	base := context.WithValue(ctx, oauth2.HTTPClient, f.client)
	httpClient := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}
	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return Raw{}, err
	}

	from, to := f.window.Range(time.Now())
	events, err := srv.Events.List("primary").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(f.window.MaxResults)).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return Raw{}, &ProviderAPIError{Provider: loopin.ProviderGoogle, Status: gerr.Code, Body: gerr.Body}
		}
		return Raw{}, err
	}
	return Raw{Google: events.Items}, nil
}
