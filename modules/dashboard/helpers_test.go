package dashboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/modules/dashboard"
	"github.com/loopinhq/loopin/pkg/cookie"
	"github.com/loopinhq/loopin/svc/backend"
	"github.com/loopinhq/loopin/svc/calendar"
	"github.com/loopinhq/loopin/svc/credentials"
	"github.com/loopinhq/loopin/svc/mailbox"
	"github.com/loopinhq/loopin/svc/oauth"
)

type authMock struct{ mock.Mock }

func (m *authMock) Start(ctx context.Context, p loopin.Provider) (oauth.AuthRequest, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(oauth.AuthRequest), args.Error(1)
}

func (m *authMock) Exchange(ctx context.Context, p loopin.Provider, code, state, expected string) (loopin.Credential, error) {
	args := m.Called(ctx, p, code, state, expected)
	return args.Get(0).(loopin.Credential), args.Error(1)
}

func (m *authMock) Accept(ctx context.Context, p loopin.Provider, token string, expiresIn time.Duration, state, expected string) (loopin.Credential, error) {
	args := m.Called(ctx, p, token, expiresIn, state, expected)
	return args.Get(0).(loopin.Credential), args.Error(1)
}

type calendarMock struct{ mock.Mock }

func (m *calendarMock) Events(ctx context.Context, tokens map[loopin.Source]string) calendar.Result {
	return m.Called(ctx, tokens).Get(0).(calendar.Result)
}

func (m *calendarMock) Raw(ctx context.Context, src loopin.Source, tok string) ([]byte, error) {
	args := m.Called(ctx, src, tok)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type mailMock struct{ mock.Mock }

func (m *mailMock) Recent(ctx context.Context, p loopin.Provider, email, tok string) ([]mailbox.Message, error) {
	args := m.Called(ctx, p, email, tok)
	msgs, _ := args.Get(0).([]mailbox.Message)
	return msgs, args.Error(1)
}

type backendMock struct{ mock.Mock }

func (m *backendMock) LoginOrSignup(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *backendMock) ConnectAccount(ctx context.Context, token string, acc backend.Account) error {
	return m.Called(ctx, token, acc).Error(0)
}

func (m *backendMock) UnifiedSummary(ctx context.Context, token string) (json.RawMessage, error) {
	args := m.Called(ctx, token)
	doc, _ := args.Get(0).(json.RawMessage)
	return doc, args.Error(1)
}

func (m *backendMock) RAGSummary(ctx context.Context, token, query string) (string, error) {
	args := m.Called(ctx, token, query)
	return args.String(0), args.Error(1)
}

type fixture struct {
	auth    *authMock
	cal     *calendarMock
	mail    *mailMock
	backend *backendMock
	cookies *cookie.Manager
	router  chi.Router
}

var fixedNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"}, cookie.Options{HttpOnly: true})
	require.NoError(t, err)

	f := &fixture{
		auth:    &authMock{},
		cal:     &calendarMock{},
		mail:    &mailMock{},
		backend: &backendMock{},
		cookies: cookies,
	}
	relay := credentials.NewRelay(credentials.NewCookieStore(cookies))
	m := dashboard.New(dashboard.Config{StateTTL: 10 * time.Minute, ConnectTimeout: time.Second}, f.auth, relay, cookies,
		dashboard.WithCalendar(f.cal),
		dashboard.WithMailbox(f.mail),
		dashboard.WithBackend(f.backend),
		dashboard.WithClock(func() time.Time { return fixedNow }),
	)
	f.router = m.Router()
	t.Cleanup(func() {
		f.auth.AssertExpectations(t)
		f.cal.AssertExpectations(t)
		f.mail.AssertExpectations(t)
		f.backend.AssertExpectations(t)
	})
	return f
}

// browser replays cookies between requests the way a browser would.
type browser struct {
	f   *fixture
	jar map[string]*http.Cookie
}

func (f *fixture) browser() *browser {
	return &browser{f: f, jar: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.jar {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	b.f.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.jar, c.Name)
			continue
		}
		b.jar[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) postJSON(target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return b.do(req)
}

// connect runs a full code-grant connect flow for cred through the router.
func (b *browser) connect(t *testing.T, cred loopin.Credential, callback string) {
	t.Helper()
	state := "state-" + cred.Provider.Key()
	b.f.auth.On("Start", mock.Anything, cred.Provider).
		Return(oauth.AuthRequest{URL: "https://provider.example/auth?state=" + state, State: state}, nil).Once()
	b.f.auth.On("Exchange", mock.Anything, cred.Provider, "code-1", state, state).Return(cred, nil).Once()

	rec := b.get("/auth/" + cred.Provider.Key() + "/start")
	require.Equal(t, http.StatusFound, rec.Code)
	rec = b.get(callback + "?code=code-1&state=" + state)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(method, target))
	return rec
}
