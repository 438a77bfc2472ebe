package oauth

import "time"

// ClientConfig is one provider's OAuth client registration.
type ClientConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
}

func (c ClientConfig) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

// ready reports whether the registration covers the flow: the implicit
// grant never sends the client secret.
func (pc *providerConfig) ready() bool {
	if pc.flow == Implicit {
		return pc.client.ClientID != "" && pc.client.RedirectURI != ""
	}
	return pc.client.complete()
}

// Config is loaded from the environment by pkg/config. Provider clients are
// optional at load time; a provider without a complete ClientConfig fails
// with ErrConfiguration when used.
type Config struct {
	Google  ClientConfig `envPrefix:"GOOGLE_"`
	Outlook ClientConfig `envPrefix:"OUTLOOK_"`
	Zoho    ClientConfig `envPrefix:"ZOHO_"`
	Yahoo   ClientConfig `envPrefix:"YAHOO_"`

	// ZohoFlow selects the Zoho grant: "implicit" or "code".
	ZohoFlow string `env:"ZOHO_OAUTH_FLOW" envDefault:"implicit"`

	ZohoAccountsURL string        `env:"ZOHO_ACCOUNTS_URL" envDefault:"https://accounts.zoho.com"`
	ZohoMailAPIURL  string        `env:"ZOHO_MAIL_API_URL" envDefault:"https://mail.zoho.com"`
	StateTTL        time.Duration `env:"STATE_TTL" envDefault:"10m"`
	HTTPTimeout     time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
}
