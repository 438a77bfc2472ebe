package redis

import "errors"

var (
	ErrEmptyConnectionURL   = errors.New("redis: empty connection URL")
	ErrInvalidConnectionURL = errors.New("redis: invalid connection URL")
	ErrNotReady             = errors.New("redis: server did not become ready")
	ErrHealthcheckFailed    = errors.New("redis: healthcheck failed")
)
