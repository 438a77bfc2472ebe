package mailbox

import "errors"

var (
	ErrMissingCredentials = errors.New("mailbox: missing email or access token")
	ErrConnect            = errors.New("mailbox: connect failed")
	ErrAuthentication     = errors.New("mailbox: authentication failed")
	ErrMailbox            = errors.New("mailbox: mailbox operation failed")
)
