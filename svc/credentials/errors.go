package credentials

import "errors"

var (
	ErrProviderMismatch = errors.New("credentials: credential provider does not match key")
	ErrStore            = errors.New("credentials: store failure")
)
