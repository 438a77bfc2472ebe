package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/loopinhq/loopin"
)

// ZohoFetcher lists events of the first Zoho calendar. Zoho's range query
// is date-only, from LookBack ago through today.
type ZohoFetcher struct {
	client  *http.Client
	baseURL string
	window  Window
	loc     *time.Location
}

func NewZohoFetcher(client *http.Client, baseURL string, window Window, loc *time.Location) *ZohoFetcher {
	if loc == nil {
		loc = time.Local
	}
	return &ZohoFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/"), window: window, loc: loc}
}

func (f *ZohoFetcher) Source() loopin.Source { return loopin.SourceZoho }

func (f *ZohoFetcher) Fetch(ctx context.Context, accessToken string) (Raw, error) {
	body, err := f.FetchRaw(ctx, accessToken)
	if err != nil {
		return Raw{}, err
	}
	var list struct {
		Events []ZohoEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return Raw{}, fmt.Errorf("decode zoho events: %w", err)
	}
	return Raw{Zoho: list.Events}, nil
}

// FetchRaw returns the events response body unchanged.
func (f *ZohoFetcher) FetchRaw(ctx context.Context, accessToken string) ([]byte, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	uid, err := f.firstCalendar(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(f.loc)
	rng, err := json.Marshal(map[string]string{
		"start": now.Add(-f.window.LookBack).Format(zohoDateLayout),
		"end":   now.Format(zohoDateLayout),
	})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/api/v1/calendars/%s/events?range=%s", f.baseURL, url.PathEscape(uid), url.QueryEscape(string(rng)))
	return f.get(ctx, u, accessToken)
}

func (f *ZohoFetcher) firstCalendar(ctx context.Context, accessToken string) (string, error) {
	body, err := f.get(ctx, f.baseURL+"/api/v1/calendars", accessToken)
	if err != nil {
		return "", err
	}
	var list struct {
		Calendars []struct {
			UID string `json:"uid"`
		} `json:"calendars"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return "", fmt.Errorf("decode zoho calendars: %w", err)
	}
	if len(list.Calendars) == 0 || list.Calendars[0].UID == "" {
		return "", ErrNoCalendar
	}
	return list.Calendars[0].UID, nil
}

func (f *ZohoFetcher) get(ctx context.Context, u, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	return do(f.client, req, loopin.ProviderZoho)
}
