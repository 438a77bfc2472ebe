package oauth

import (
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/loopinhq/loopin"
)

// Flow is the OAuth grant a provider's connect flow uses.
type Flow int

const (
	// AuthorizationCode returns a code to a server callback.
	AuthorizationCode Flow = iota
	// Implicit returns the access token in the redirect URI fragment.
	Implicit
)

func (f Flow) String() string {
	if f == Implicit {
		return "implicit"
	}
	return "code"
}

// ParseFlow reads "implicit"/"token" or anything else as the code grant.
func ParseFlow(s string) Flow {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "implicit", "token":
		return Implicit
	}
	return AuthorizationCode
}

var (
	googleScopes = []string{
		"https://mail.google.com/",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/calendar",
	}
	outlookScopes = []string{
		"openid",
		"profile",
		"offline_access",
		"email",
		"https://graph.microsoft.com/Mail.Read",
		"https://graph.microsoft.com/User.Read",
		"https://graph.microsoft.com/Calendars.ReadWrite",
	}
	zohoScopes = []string{
		"ZohoMail.messages.READ",
		"ZohoMail.accounts.READ",
		"ZohoCalendar.calendar.ALL",
		"ZohoCalendar.event.ALL",
	}
	yahooScopes = []string{"mail-r", "openid", "email"}
)

// providerConfig is the per-provider record driving the generic flow code.
type providerConfig struct {
	provider loopin.Provider
	client   ClientConfig
	flow     Flow
	oauth    *oauth2.Config
	identity identityResolver

	// authParams are appended to the authorization URL.
	authParams []oauth2.AuthCodeOption
	// echoScope sends the scope list again on the token request.
	echoScope  bool
	// implicit marks providers that accept the implicit grant.
	implicit   bool
}

func newOAuthConfig(c ClientConfig, ep oauth2.Endpoint, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Endpoint:     ep,
		Scopes:       scopes,
	}
}

// Endpoints are the provider URLs the service talks to. Tests point them at
// httptest servers.
type Endpoints struct {
	Google  oauth2.Endpoint
	Outlook oauth2.Endpoint
	Zoho    oauth2.Endpoint
	Yahoo   oauth2.Endpoint

	GoogleUserInfo []string
	GraphMe        string
	ZohoAccounts   string
}

// DefaultEndpoints returns the production endpoints for cfg.
func DefaultEndpoints(cfg Config) Endpoints {
	outlook := microsoft.AzureADEndpoint("common")
	outlook.AuthStyle = oauth2.AuthStyleInParams

	zohoAccounts := strings.TrimRight(cfg.ZohoAccountsURL, "/")
	if zohoAccounts == "" {
		zohoAccounts = "https://accounts.zoho.com"
	}
	zohoMail := strings.TrimRight(cfg.ZohoMailAPIURL, "/")
	if zohoMail == "" {
		zohoMail = "https://mail.zoho.com"
	}

	return Endpoints{
		Google: oauth2.Endpoint{
			AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:  google.Endpoint.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Outlook: outlook,
		Zoho: oauth2.Endpoint{
			AuthURL:   zohoAccounts + "/oauth/v2/auth",
			TokenURL:  zohoAccounts + "/oauth/v2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Yahoo: oauth2.Endpoint{
			AuthURL:   "https://api.login.yahoo.com/oauth2/request_auth",
			TokenURL:  "https://api.login.yahoo.com/oauth2/get_token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		GoogleUserInfo: []string{
			"https://www.googleapis.com/oauth2/v2/userinfo",
			"https://www.googleapis.com/oauth2/v1/userinfo",
		},
		GraphMe:      "https://graph.microsoft.com/v1.0/me",
		ZohoAccounts: zohoMail + "/api/accounts",
	}
}

func buildProviders(cfg Config, ep Endpoints) map[loopin.Provider]*providerConfig {
	consent := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	}

	zohoFlow := ParseFlow(cfg.ZohoFlow)
	zohoParams := append([]oauth2.AuthCodeOption{}, consent...)
	if zohoFlow == Implicit {
		zohoParams = append(zohoParams, oauth2.SetAuthURLParam("response_type", "token"))
	}
	zohoParams = append(zohoParams, oauth2.SetAuthURLParam("scope", strings.Join(zohoScopes, ",")))

	return map[loopin.Provider]*providerConfig{
		loopin.ProviderGoogle: {
			provider:   loopin.ProviderGoogle,
			client:     cfg.Google,
			flow:       AuthorizationCode,
			oauth:      newOAuthConfig(cfg.Google, ep.Google, googleScopes),
			authParams: consent,
			identity:   googleIdentity(ep.GoogleUserInfo),
		},
		loopin.ProviderOutlook: {
			provider:  loopin.ProviderOutlook,
			client:    cfg.Outlook,
			flow:      AuthorizationCode,
			oauth:     newOAuthConfig(cfg.Outlook, ep.Outlook, outlookScopes),
			echoScope: true,
			identity:  outlookIdentity(ep.GraphMe),
		},
		loopin.ProviderZoho: {
			provider:   loopin.ProviderZoho,
			client:     cfg.Zoho,
			flow:       zohoFlow,
			oauth:      newOAuthConfig(cfg.Zoho, ep.Zoho, zohoScopes),
			authParams: zohoParams,
			identity:   zohoIdentity(ep.ZohoAccounts),
			implicit:   true,
		},
		loopin.ProviderYahoo: {
			provider: loopin.ProviderYahoo,
			client:   cfg.Yahoo,
			flow:     AuthorizationCode,
			oauth:    newOAuthConfig(cfg.Yahoo, ep.Yahoo, yahooScopes),
		},
	}
}
