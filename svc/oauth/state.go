package oauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/token"
)

type statePayload struct {
	Provider loopin.Provider `json:"p"`
	Nonce    string          `json:"n"`
	Exp      int64           `json:"e"`
}

func (s statePayload) ExpiresAt() time.Time { return time.Unix(s.Exp, 0) }

func (s *Service) newState(p loopin.Provider) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return token.Generate(statePayload{
		Provider: p,
		Nonce:    base64.RawURLEncoding.EncodeToString(nonce),
		Exp:      s.now().Add(s.cfg.StateTTL).Unix(),
	}, s.secret)
}

// verifyState checks that state equals the value bound to the browser,
// carries a valid signature, has not expired, and was minted for p.
func (s *Service) verifyState(p loopin.Provider, state, expected string) error {
	if state == "" || expected == "" {
		return ErrInvalidState
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		return ErrInvalidState
	}
	payload, err := token.Parse[statePayload](state, s.secret, s.now())
	if err != nil {
		return errors.Join(ErrInvalidState, err)
	}
	if payload.Provider != p {
		return ErrInvalidState
	}
	return nil
}
