package loopin

import (
	"errors"
	"time"
)

var (
	// ErrEmptyAccessToken is returned when a credential has no access token.
	ErrEmptyAccessToken = errors.New("loopin: credential access token is empty")
)

// Credential is the token set a provider connect flow produced for one
// browser session. Empty strings and the zero time mean "absent".
type Credential struct {
	Provider       Provider  `json:"provider"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	ConnectedEmail string    `json:"connected_email,omitempty"`
	ExpiresAt      time.Time `json:"expires_at,omitzero"`
}

// Validate checks the invariants every stored credential must hold.
func (c Credential) Validate() error {
	if !c.Provider.Valid() {
		return ErrUnknownProvider
	}
	if c.AccessToken == "" {
		return ErrEmptyAccessToken
	}
	return nil
}

// Expired reports whether the credential carries an expiry that has passed.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
