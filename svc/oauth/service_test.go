package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/svc/oauth"
)

var secret = []byte("state-signing-secret")

func client(id string) oauth.ClientConfig {
	return oauth.ClientConfig{
		ClientID:     id + "-client",
		ClientSecret: id + "-secret",
		RedirectURI:  "https://app.example.com/cb/" + id,
	}
}

func fullConfig() oauth.Config {
	return oauth.Config{
		Google:   client("google"),
		Outlook:  client("outlook"),
		Zoho:     client("zoho"),
		Yahoo:    client("yahoo"),
		ZohoFlow: "implicit",
	}
}

// fakeProvider serves token and identity endpoints for every provider.
type fakeProvider struct {
	*httptest.Server

	mu        sync.Mutex
	tokenForm map[string]url.Values
	basicAuth map[string][2]string

	googleV2     http.HandlerFunc
	googleV1     http.HandlerFunc
	graphMe      http.HandlerFunc
	zohoAccounts http.HandlerFunc
	tokenStatus  int
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	f := &fakeProvider{
		tokenForm: map[string]url.Values{},
		basicAuth: map[string][2]string{},
		googleV2:  jsonHandler(http.StatusOK, `{"email":"g@example.com"}`),
		googleV1:  jsonHandler(http.StatusOK, `{"email":"g1@example.com"}`),
		graphMe:   jsonHandler(http.StatusOK, `{"mail":"o@example.com","userPrincipalName":"upn@example.com"}`),
		zohoAccounts: func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Zoho-oauthtoken access-zoho" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			jsonHandler(http.StatusOK, `{"data":[{"emailAddress":"z@example.com"},{"emailAddress":"other@example.com"}]}`)(w, r)
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token/{provider}", func(w http.ResponseWriter, r *http.Request) {
		p := r.PathValue("provider")
		_ = r.ParseForm()
		f.mu.Lock()
		f.tokenForm[p] = r.PostForm
		if u, pw, ok := r.BasicAuth(); ok {
			f.basicAuth[p] = [2]string{u, pw}
		}
		status := f.tokenStatus
		f.mu.Unlock()
		if status != 0 {
			jsonHandler(status, `{"error":"invalid_grant"}`)(w, r)
			return
		}
		jsonHandler(http.StatusOK, `{"access_token":"access-`+p+`","refresh_token":"refresh-`+p+`","token_type":"Bearer","expires_in":3600}`)(w, r)
	})
	mux.HandleFunc("/google/v2", func(w http.ResponseWriter, r *http.Request) { f.googleV2(w, r) })
	mux.HandleFunc("/google/v1", func(w http.ResponseWriter, r *http.Request) { f.googleV1(w, r) })
	mux.HandleFunc("/graph/me", func(w http.ResponseWriter, r *http.Request) { f.graphMe(w, r) })
	mux.HandleFunc("/zoho/accounts", func(w http.ResponseWriter, r *http.Request) { f.zohoAccounts(w, r) })

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeProvider) endpoints() oauth.Endpoints {
	ep := func(p string, style oauth2.AuthStyle) oauth2.Endpoint {
		return oauth2.Endpoint{AuthURL: f.URL + "/auth/" + p, TokenURL: f.URL + "/token/" + p, AuthStyle: style}
	}
	return oauth.Endpoints{
		Google:         ep("google", oauth2.AuthStyleInParams),
		Outlook:        ep("outlook", oauth2.AuthStyleInParams),
		Zoho:           ep("zoho", oauth2.AuthStyleInParams),
		Yahoo:          ep("yahoo", oauth2.AuthStyleInHeader),
		GoogleUserInfo: []string{f.URL + "/google/v2", f.URL + "/google/v1"},
		GraphMe:        f.URL + "/graph/me",
		ZohoAccounts:   f.URL + "/zoho/accounts",
	}
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newService(t *testing.T, f *fakeProvider, opts ...oauth.Option) *oauth.Service {
	t.Helper()
	svc, err := oauth.New(fullConfig(), secret, append([]oauth.Option{oauth.WithEndpoints(f.endpoints())}, opts...)...)
	require.NoError(t, err)
	return svc
}

func start(t *testing.T, svc *oauth.Service, p loopin.Provider) oauth.AuthRequest {
	t.Helper()
	req, err := svc.Start(context.Background(), p)
	require.NoError(t, err)
	return req
}

func TestStart_DefaultEndpoints(t *testing.T) {
	t.Parallel()

	svc, err := oauth.New(fullConfig(), secret)
	require.NoError(t, err)

	tests := []struct {
		provider loopin.Provider
		host     string
		path     string
		scope    string
		extra    map[string]string
	}{
		{
			provider: loopin.ProviderGoogle,
			host:     "accounts.google.com",
			path:     "/o/oauth2/v2/auth",
			scope:    "https://mail.google.com/ https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/calendar",
			extra:    map[string]string{"access_type": "offline", "prompt": "consent", "response_type": "code"},
		},
		{
			provider: loopin.ProviderOutlook,
			host:     "login.microsoftonline.com",
			path:     "/common/oauth2/v2.0/authorize",
			scope:    "openid profile offline_access email https://graph.microsoft.com/Mail.Read https://graph.microsoft.com/User.Read https://graph.microsoft.com/Calendars.ReadWrite",
			extra:    map[string]string{"response_type": "code"},
		},
		{
			provider: loopin.ProviderZoho,
			host:     "accounts.zoho.com",
			path:     "/oauth/v2/auth",
			scope:    "ZohoMail.messages.READ,ZohoMail.accounts.READ,ZohoCalendar.calendar.ALL,ZohoCalendar.event.ALL",
			extra:    map[string]string{"access_type": "offline", "prompt": "consent", "response_type": "token"},
		},
		{
			provider: loopin.ProviderYahoo,
			host:     "api.login.yahoo.com",
			path:     "/oauth2/request_auth",
			scope:    "mail-r openid email",
			extra:    map[string]string{"response_type": "code"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.provider.Key(), func(t *testing.T) {
			t.Parallel()

			req := start(t, svc, tt.provider)
			u, err := url.Parse(req.URL)
			require.NoError(t, err)

			assert.Equal(t, tt.host, u.Host)
			assert.Equal(t, tt.path, u.Path)
			q := u.Query()
			assert.Equal(t, tt.provider.Key()+"-client", q.Get("client_id"))
			assert.Equal(t, "https://app.example.com/cb/"+tt.provider.Key(), q.Get("redirect_uri"))
			assert.Equal(t, tt.scope, q.Get("scope"))
			assert.Equal(t, req.State, q.Get("state"))
			assert.NotEmpty(t, req.State)
			for k, v := range tt.extra {
				assert.Equal(t, v, q.Get(k), k)
			}
		})
	}
}

func TestStart_ZohoCodeFlow(t *testing.T) {
	t.Parallel()

	cfg := fullConfig()
	cfg.ZohoFlow = "code"
	svc, err := oauth.New(cfg, secret)
	require.NoError(t, err)

	req := start(t, svc, loopin.ProviderZoho)
	assert.Equal(t, oauth.AuthorizationCode, req.Flow)
	u, _ := url.Parse(req.URL)
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestStart_Errors(t *testing.T) {
	t.Parallel()

	svc, err := oauth.New(oauth.Config{Google: oauth.ClientConfig{ClientID: "only-id"}}, secret)
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), loopin.ProviderGoogle)
	assert.ErrorIs(t, err, oauth.ErrConfiguration)
	assert.False(t, svc.Configured(loopin.ProviderGoogle))

	_, err = svc.Start(context.Background(), "AOL")
	assert.ErrorIs(t, err, oauth.ErrUnsupportedProvider)

	_, err = oauth.New(fullConfig(), nil)
	assert.ErrorIs(t, err, oauth.ErrConfiguration)
}

func TestStart_ImplicitZohoWithoutSecret(t *testing.T) {
	t.Parallel()

	cfg := oauth.Config{
		Zoho:     oauth.ClientConfig{ClientID: "zoho-client", RedirectURI: "https://app.example.com/zoho-callback"},
		ZohoFlow: "implicit",
	}
	svc, err := oauth.New(cfg, secret)
	require.NoError(t, err)

	assert.True(t, svc.Configured(loopin.ProviderZoho))
	req, err := svc.Start(context.Background(), loopin.ProviderZoho)
	require.NoError(t, err)
	assert.Equal(t, oauth.Implicit, req.Flow)
	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "token", u.Query().Get("response_type"))
	assert.Equal(t, "zoho-client", u.Query().Get("client_id"))

	cfg.ZohoFlow = "code"
	svc, err = oauth.New(cfg, secret)
	require.NoError(t, err)
	assert.False(t, svc.Configured(loopin.ProviderZoho))
	_, err = svc.Start(context.Background(), loopin.ProviderZoho)
	assert.ErrorIs(t, err, oauth.ErrConfiguration)
}

func TestExchange_Google(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderGoogle)

	cred, err := svc.Exchange(context.Background(), loopin.ProviderGoogle, "code-1", req.State, req.State)
	require.NoError(t, err)
	assert.Equal(t, loopin.ProviderGoogle, cred.Provider)
	assert.Equal(t, "access-google", cred.AccessToken)
	assert.Equal(t, "refresh-google", cred.RefreshToken)
	assert.Equal(t, "g@example.com", cred.ConnectedEmail)
	assert.False(t, cred.ExpiresAt.IsZero())
	require.NoError(t, cred.Validate())

	form := f.tokenForm["google"]
	assert.Equal(t, "code-1", form.Get("code"))
	assert.Equal(t, "google-client", form.Get("client_id"))
	assert.Equal(t, "google-secret", form.Get("client_secret"))
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
}

func TestExchange_GoogleUserInfoFallback(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	f.googleV2 = jsonHandler(http.StatusInternalServerError, `{}`)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderGoogle)

	cred, err := svc.Exchange(context.Background(), loopin.ProviderGoogle, "code", req.State, req.State)
	require.NoError(t, err)
	assert.Equal(t, "g1@example.com", cred.ConnectedEmail)
}

func TestExchange_GoogleUserInfoBothFail(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	f.googleV2 = jsonHandler(http.StatusUnauthorized, `{}`)
	f.googleV1 = jsonHandler(http.StatusOK, `{"id":"123"}`)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderGoogle)

	cred, err := svc.Exchange(context.Background(), loopin.ProviderGoogle, "code", req.State, req.State)
	assert.ErrorIs(t, err, oauth.ErrEmailResolution)
	assert.Equal(t, loopin.Credential{}, cred, "no tokens leak on identity failure")
}

func TestExchange_TokenEndpointFailure(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	f.tokenStatus = http.StatusBadRequest
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderGoogle)

	_, err := svc.Exchange(context.Background(), loopin.ProviderGoogle, "bad", req.State, req.State)
	assert.ErrorIs(t, err, oauth.ErrTokenExchange)
}

func TestExchange_OutlookEchoesScope(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	f.graphMe = jsonHandler(http.StatusOK, `{"mail":null,"userPrincipalName":"upn@example.com"}`)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderOutlook)

	cred, err := svc.Exchange(context.Background(), loopin.ProviderOutlook, "code", req.State, req.State)
	require.NoError(t, err)
	assert.Equal(t, "upn@example.com", cred.ConnectedEmail)

	u, _ := url.Parse(req.URL)
	assert.Equal(t, u.Query().Get("scope"), f.tokenForm["outlook"].Get("scope"))
}

func TestExchange_OutlookIdentityFailure(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	f.graphMe = jsonHandler(http.StatusForbidden, `{"error":{"code":"Authorization_RequestDenied"}}`)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderOutlook)

	_, err := svc.Exchange(context.Background(), loopin.ProviderOutlook, "code", req.State, req.State)
	assert.ErrorIs(t, err, oauth.ErrEmailResolution)
}

func TestExchange_YahooBasicAuth(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderYahoo)

	cred, err := svc.Exchange(context.Background(), loopin.ProviderYahoo, "code", req.State, req.State)
	require.NoError(t, err)
	assert.Equal(t, "access-yahoo", cred.AccessToken)
	assert.Empty(t, cred.ConnectedEmail)

	assert.Equal(t, [2]string{"yahoo-client", "yahoo-secret"}, f.basicAuth["yahoo"])
	assert.Empty(t, f.tokenForm["yahoo"].Get("client_secret"))
}

func TestExchange_ZohoCode(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderZoho)

	cred, err := svc.Exchange(context.Background(), loopin.ProviderZoho, "code", req.State, req.State)
	require.NoError(t, err)
	assert.Equal(t, "z@example.com", cred.ConnectedEmail)
}

func TestExchange_ZohoNoAccounts(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	f.zohoAccounts = jsonHandler(http.StatusOK, `{"data":[]}`)
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderZoho)

	_, err := svc.Exchange(context.Background(), loopin.ProviderZoho, "code", req.State, req.State)
	assert.ErrorIs(t, err, oauth.ErrNoAccountsFound)
}

func TestAccept_ZohoImplicit(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	f.zohoAccounts = jsonHandler(http.StatusOK, `{"data":[{"emailAddress":[{"mailId":"alias@example.com"},{"mailId":"primary@example.com","isPrimary":true}]}]}`)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	svc := newService(t, f, oauth.WithClock(func() time.Time { return now }))
	req := start(t, svc, loopin.ProviderZoho)
	assert.Equal(t, oauth.Implicit, req.Flow)

	cred, err := svc.Accept(context.Background(), loopin.ProviderZoho, "implicit-token", time.Hour, req.State, req.State)
	require.NoError(t, err)
	assert.Equal(t, "implicit-token", cred.AccessToken)
	assert.Equal(t, "primary@example.com", cred.ConnectedEmail)
	assert.True(t, now.Add(time.Hour).Equal(cred.ExpiresAt))

	greq := start(t, svc, loopin.ProviderGoogle)
	_, err = svc.Accept(context.Background(), loopin.ProviderGoogle, "tok", 0, greq.State, greq.State)
	assert.ErrorIs(t, err, oauth.ErrUnsupportedFlow)
}

func TestExchange_StateVerification(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	clock := &now
	svc := newService(t, f, oauth.WithClock(func() time.Time { return *clock }))

	google := start(t, svc, loopin.ProviderGoogle)
	yahoo := start(t, svc, loopin.ProviderYahoo)
	ctx := context.Background()

	tests := []struct {
		name     string
		state    string
		expected string
	}{
		{"missing", "", google.State},
		{"no bound cookie", google.State, ""},
		{"cookie mismatch", google.State, yahoo.State},
		{"other provider", yahoo.State, yahoo.State},
		{"tampered", google.State + "x", google.State + "x"},
		{"forged", "eyJwIjoiR09PR0xFIn0.AAAA", "eyJwIjoiR09PR0xFIn0.AAAA"},
	}
	for _, tt := range tests {
		_, err := svc.Exchange(ctx, loopin.ProviderGoogle, "code", tt.state, tt.expected)
		assert.ErrorIs(t, err, oauth.ErrInvalidState, tt.name)
	}

	_, err := svc.Exchange(ctx, loopin.ProviderGoogle, "", google.State, google.State)
	assert.ErrorIs(t, err, oauth.ErrMissingCode)

	later := now.Add(11 * time.Minute)
	clock = &later
	_, err = svc.Exchange(ctx, loopin.ProviderGoogle, "code", google.State, google.State)
	assert.ErrorIs(t, err, oauth.ErrInvalidState, "expired")

	assert.Empty(t, f.tokenForm, "no token request for rejected callbacks")
}

func TestParseFlow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, oauth.Implicit, oauth.ParseFlow("Implicit"))
	assert.Equal(t, oauth.Implicit, oauth.ParseFlow("token"))
	assert.Equal(t, oauth.AuthorizationCode, oauth.ParseFlow("code"))
	assert.Equal(t, oauth.AuthorizationCode, oauth.ParseFlow(""))
	assert.Equal(t, "implicit", oauth.Implicit.String())
}

func TestZohoAccountFormats(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	body, _ := json.Marshal(map[string]any{"data": []map[string]any{{"primaryEmailAddress": "p@example.com", "emailAddress": []any{}}}})
	f.zohoAccounts = jsonHandler(http.StatusOK, string(body))
	svc := newService(t, f)
	req := start(t, svc, loopin.ProviderZoho)

	cred, err := svc.Accept(context.Background(), loopin.ProviderZoho, "tok", 0, req.State, req.State)
	require.NoError(t, err)
	assert.Equal(t, "p@example.com", cred.ConnectedEmail)
}
