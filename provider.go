package loopin

import (
	"errors"
	"strings"
)

// Provider identifies a third-party mail/calendar provider.
type Provider string

const (
	ProviderGoogle  Provider = "GOOGLE"
	ProviderOutlook Provider = "OUTLOOK"
	ProviderZoho    Provider = "ZOHO"
	ProviderYahoo   Provider = "YAHOO"
)

// ErrUnknownProvider is returned when a provider name cannot be parsed.
var ErrUnknownProvider = errors.New("loopin: unknown provider")

// Providers lists every supported provider in display order.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderOutlook, ProviderZoho, ProviderYahoo}
}

// ParseProvider accepts the upper-case identifier, the lower-case key form,
// and the legacy "gmail" alias for Google.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "google", "gmail":
		return ProviderGoogle, nil
	case "outlook", "microsoft":
		return ProviderOutlook, nil
	case "zoho":
		return ProviderZoho, nil
	case "yahoo":
		return ProviderYahoo, nil
	}
	return "", ErrUnknownProvider
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderOutlook, ProviderZoho, ProviderYahoo:
		return true
	}
	return false
}

// Key returns the lower-case form used in routes and storage keys.
func (p Provider) Key() string {
	return strings.ToLower(string(p))
}

// Title returns the human-readable provider name.
func (p Provider) Title() string {
	switch p {
	case ProviderGoogle:
		return "Google"
	case ProviderOutlook:
		return "Outlook"
	case ProviderZoho:
		return "Zoho"
	case ProviderYahoo:
		return "Yahoo"
	}
	return string(p)
}

func (p Provider) String() string {
	return string(p)
}
