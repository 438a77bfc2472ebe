package token

import "errors"

var (
	ErrInvalidToken     = errors.New("token: invalid format")
	ErrSignatureInvalid = errors.New("token: signature mismatch")
	ErrExpired          = errors.New("token: expired")
	ErrEmptySecret      = errors.New("token: empty secret")
)
