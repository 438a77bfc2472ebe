package mailbox

import (
	"errors"

	"github.com/emersion/go-sasl"
)

// xoauth2 implements the XOAUTH2 SASL mechanism used by Gmail, Outlook,
// Yahoo and Zoho IMAP servers.
type xoauth2 struct {
	user  string
	token string
}

var _ sasl.Client = (*xoauth2)(nil)

// NewXOAuth2Client returns a SASL client authenticating user with an OAuth2
// bearer token.
func NewXOAuth2Client(user, token string) sasl.Client {
	return &xoauth2{user: user, token: token}
}

func (a *xoauth2) Start() (string, []byte, error) {
	return "XOAUTH2", []byte("user=" + a.user + "\x01auth=Bearer " + a.token + "\x01\x01"), nil
}

// Next receives the server's JSON error description when the token is
// rejected; answering with an empty response ends the exchange.
func (a *xoauth2) Next(challenge []byte) ([]byte, error) {
	if len(challenge) == 0 {
		return nil, errors.New("xoauth2: unexpected empty challenge")
	}
	return []byte{}, nil
}
