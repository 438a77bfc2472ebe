package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/loopinhq/loopin"
)

const graphTimeLayout = "2006-01-02T15:04:05.000Z"

// OutlookFetcher lists the signed-in user's events through Microsoft Graph.
type OutlookFetcher struct {
	client  *http.Client
	baseURL string
	window  Window
}

func NewOutlookFetcher(client *http.Client, baseURL string, window Window) *OutlookFetcher {
	return &OutlookFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/"), window: window}
}

func (f *OutlookFetcher) Source() loopin.Source { return loopin.SourceOutlook }

func (f *OutlookFetcher) Fetch(ctx context.Context, accessToken string) (Raw, error) {
	body, err := f.FetchRaw(ctx, accessToken)
	if err != nil {
		return Raw{}, err
	}
	var page struct {
		Value []OutlookEvent `json:"value"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return Raw{}, fmt.Errorf("decode outlook events: %w", err)
	}
	return Raw{Outlook: page.Value}, nil
}

// FetchRaw returns Graph's response body unchanged.
func (f *OutlookFetcher) FetchRaw(ctx context.Context, accessToken string) ([]byte, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	from, to := f.window.Range(time.Now())

	q := url.Values{}
	q.Set("$select", "id,subject,start,end,location,attendees,organizer,body,onlineMeeting,webLink")
	q.Set("$filter", fmt.Sprintf("start/dateTime ge '%s' and end/dateTime le '%s'", from.Format(graphTimeLayout), to.Format(graphTimeLayout)))
	q.Set("$orderby", "start/dateTime")
	q.Set("$top", strconv.Itoa(f.window.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/me/events?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	return do(f.client, req, loopin.ProviderOutlook)
}

// do executes req and turns non-2xx answers into *ProviderAPIError.
func do(client *http.Client, req *http.Request, p loopin.Provider) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderAPIError{Provider: p, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
