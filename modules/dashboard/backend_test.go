package dashboard_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/modules/dashboard"
	"github.com/loopinhq/loopin/pkg/cookie"
	"github.com/loopinhq/loopin/pkg/ratelimit"
	"github.com/loopinhq/loopin/svc/backend"
	"github.com/loopinhq/loopin/svc/credentials"
)

func TestBackendSession_ThenSummaryAndChat(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	b := f.browser()

	cred := loopin.Credential{Provider: loopin.ProviderGoogle, AccessToken: "gat", RefreshToken: "grt", ConnectedEmail: "ada@gmail.com"}
	b.connect(t, cred, "/auth/callback/google")

	f.backend.On("LoginOrSignup", mock.Anything, "ada@gmail.com").Return("bt", nil)
	f.backend.On("ConnectAccount", mock.Anything, "bt", backend.AccountFromCredential(cred)).Return(nil).Once()
	rec := b.postJSON("/backend/session", `{"email":"ada@gmail.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":true}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "bt", "the backend token stays server side")

	f.backend.On("UnifiedSummary", mock.Anything, "bt").Return(json.RawMessage(`{"unread_emails":{"data":[]}}`), nil)
	rec = b.postJSON("/summary", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread_emails":{"data":[]}}`, rec.Body.String())

	f.backend.On("RAGSummary", mock.Anything, "bt", "anything urgent?").Return("Nothing urgent.", nil)
	rec = b.postJSON("/chat", `{"query":"anything urgent?"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":"Nothing urgent."}`, rec.Body.String())
}

func TestBackend_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.backend.On("UnifiedSummary", mock.Anything, "").Return(nil, backend.ErrMissingToken)
	f.backend.On("RAGSummary", mock.Anything, "", "q").Return("", &backend.APIError{Status: 500, Body: "boom"})

	b := f.browser()
	rec := b.postJSON("/summary", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Backend session required"}`, rec.Body.String())

	rec = b.postJSON("/chat", `{"query":"q"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Backend error","details":"boom"}`, rec.Body.String())
}

func TestOptionalFeaturesNotConfigured(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"}, cookie.Options{})
	require.NoError(t, err)
	m := dashboard.New(dashboard.Config{}, &authMock{}, credentials.NewRelay(credentials.NewCookieStore(cookies)), cookies)
	router := m.Router()

	for _, path := range []string{"/calendar/events", "/summary"} {
		method := http.MethodGet
		if path == "/summary" {
			method = http.MethodPost
		}
		rec := serve(router, method, path)
		assert.Equal(t, http.StatusNotImplemented, rec.Code, path)
	}
}

func TestAccounts_DisconnectAndExpiry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	b := f.browser()
	b.connect(t, loopin.Credential{Provider: loopin.ProviderGoogle, AccessToken: "gat", ConnectedEmail: "a@gmail.com"}, "/auth/callback/google")
	b.connect(t, loopin.Credential{
		Provider:       loopin.ProviderOutlook,
		AccessToken:    "oat",
		ConnectedEmail: "a@outlook.com",
		ExpiresAt:      fixedNow.Add(-time.Minute),
	}, "/oauth/callback/outlook")

	rec := b.get("/accounts")
	assert.JSONEq(t, `{"accounts":[
		{"provider":"GOOGLE","email":"a@gmail.com","status":"connected"},
		{"provider":"OUTLOOK","email":"a@outlook.com","status":"expired"}
	]}`, rec.Body.String())

	dash := b.get("/dashboard")
	assert.Contains(t, dash.Body.String(), "(expired)")
	assert.Contains(t, dash.Body.String(), `href="/auth/zoho/start"`)

	rec = b.do(newRequest(http.MethodDelete, "/accounts/google"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = b.get("/accounts")
	assert.JSONEq(t, `{"accounts":[{"provider":"OUTLOOK","email":"a@outlook.com","status":"expired"}]}`, rec.Body.String())

	rec = b.do(newRequest(http.MethodDelete, "/accounts/aol"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit_GuardsRelayRoutes(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"}, cookie.Options{})
	require.NoError(t, err)
	bucket, err := ratelimit.NewBucket(ratelimit.NewMemoryStore(), ratelimit.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	m := dashboard.New(dashboard.Config{}, &authMock{}, credentials.NewRelay(credentials.NewCookieStore(cookies)), cookies,
		dashboard.WithRateLimit(ratelimit.Middleware(bucket, ratelimit.ClientIP, nil)),
	)
	router := m.Router()

	assert.Equal(t, http.StatusNotImplemented, serve(router, http.MethodPost, "/summary").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodPost, "/summary").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/accounts").Code, "read routes are not limited")
}
