package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrInvalidSession  = errors.New("session: invalid session")
	ErrStore           = errors.New("session: store failure")
)
