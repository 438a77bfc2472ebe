package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Expirer is implemented by payloads that carry their own deadline.
type Expirer interface {
	ExpiresAt() time.Time
}

// Generate encodes payload as JSON and appends a full HMAC-SHA256 tag:
// base64url(payload) "." base64url(tag).
func Generate[T any](payload T, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	enc := base64.RawURLEncoding.EncodeToString(data)
	return enc + "." + base64.RawURLEncoding.EncodeToString(sign(secret, enc)), nil
}

// Parse verifies tok and decodes its payload. Payloads implementing
// Expirer are rejected with ErrExpired once their deadline has passed.
func Parse[T any](tok string, secret []byte, now time.Time) (T, error) {
	var payload T
	if len(secret) == 0 {
		return payload, ErrEmptySecret
	}
	enc, sigEnc, ok := strings.Cut(tok, ".")
	if !ok || enc == "" || sigEnc == "" {
		return payload, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil {
		return payload, ErrInvalidToken
	}
	if !hmac.Equal(sig, sign(secret, enc)) {
		return payload, ErrSignatureInvalid
	}
	data, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return payload, ErrInvalidToken
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}
	if e, ok := any(payload).(Expirer); ok && now.After(e.ExpiresAt()) {
		return payload, ErrExpired
	}
	return payload, nil
}

func sign(secret []byte, enc string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(enc))
	return h.Sum(nil)
}
