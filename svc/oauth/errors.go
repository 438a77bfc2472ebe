package oauth

import "errors"

var (
	ErrConfiguration       = errors.New("oauth: provider is not configured")
	ErrUnsupportedProvider = errors.New("oauth: unsupported provider")
	ErrUnsupportedFlow     = errors.New("oauth: flow not supported by provider")
	ErrMissingCode         = errors.New("oauth: missing authorization code")
	ErrInvalidState        = errors.New("oauth: invalid or expired state")
	ErrTokenExchange       = errors.New("oauth: token exchange failed")
	ErrEmailResolution     = errors.New("oauth: could not resolve account email")
	ErrNoAccountsFound     = errors.New("oauth: no accounts found")
)
