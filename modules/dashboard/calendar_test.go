package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/svc/calendar"
)

func TestRawEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.cal.On("Raw", mock.Anything, loopin.SourceOutlook, "oat").Return([]byte(`{"value":[{"id":"1"}]}`), nil)

	req := httptest.NewRequest(http.MethodGet, "/outlook/events", nil)
	req.Header.Set("Authorization", "Bearer oat")
	rec := f.browser().do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"value":[{"id":"1"}]}`, rec.Body.String())
}

func TestRawEvents_MissingBearer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for _, path := range []string{"/outlook/events", "/zoho/events"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := f.browser().do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"error":"No valid authorization header"}`, rec.Body.String())
	}
}

func TestRawEvents_ForwardsProviderError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.cal.On("Raw", mock.Anything, loopin.SourceZoho, "expired").Return(nil, &calendar.ProviderAPIError{
		Provider: loopin.ProviderZoho,
		Status:   http.StatusUnauthorized,
		Body:     `{"code":"INVALID_OAUTHTOKEN"}`,
	})
	f.cal.On("Raw", mock.Anything, loopin.SourceZoho, "nocal").Return(nil, calendar.ErrNoCalendar)

	req := httptest.NewRequest(http.MethodGet, "/zoho/events", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := f.browser().do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Zoho API error: 401","details":"{\"code\":\"INVALID_OAUTHTOKEN\"}"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/zoho/events", nil)
	req.Header.Set("Authorization", "Bearer nocal")
	rec = f.browser().do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"No Zoho calendar UID found"}`, rec.Body.String())
}

func TestUnifiedEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	b := f.browser()
	b.connect(t, loopin.Credential{Provider: loopin.ProviderGoogle, AccessToken: "gat", ConnectedEmail: "a@gmail.com"}, "/auth/callback/google")
	b.connect(t, loopin.Credential{Provider: loopin.ProviderYahoo, AccessToken: "yat"}, "/auth/yahoo/callback")
	b.connect(t, loopin.Credential{Provider: loopin.ProviderOutlook, AccessToken: "oat", ConnectedEmail: "a@outlook.com"}, "/oauth/callback/outlook")

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	f.cal.On("Events", mock.Anything, map[loopin.Source]string{
		loopin.SourceGoogle:  "gat",
		loopin.SourceOutlook: "oat",
	}).Return(calendar.Result{
		Events: []loopin.CalendarEvent{{ID: "g1", Title: "Standup", Start: start, End: start.Add(time.Hour), Source: loopin.SourceGoogle}},
		Errors: map[loopin.Source]string{loopin.SourceOutlook: "Outlook API error: 401"},
	})

	rec := b.get("/calendar/events")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"events": [{
			"id": "g1",
			"title": "Standup",
			"start": "2024-01-01T10:00:00Z",
			"end": "2024-01-01T11:00:00Z",
			"source": "google"
		}],
		"errors": {"outlook": "Outlook API error: 401"}
	}`, rec.Body.String())
}

func TestUnifiedEvents_NoAccounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.cal.On("Events", mock.Anything, map[loopin.Source]string{}).Return(calendar.Result{})

	rec := f.browser().get("/calendar/events")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"events":[],"errors":{}}`, rec.Body.String())
}
