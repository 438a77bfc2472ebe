// Package token produces compact HMAC-signed tokens carrying a JSON payload.
//
// Format: base64url(payload) "." base64url(HMAC-SHA256(payload)).
//
// The OAuth flows use it for the state parameter: the payload names the
// provider and a nonce and carries a short expiry, so a callback can reject
// a state minted for another provider or replayed after the window closes.
//
//	type state struct {
//		Provider string    `json:"p"`
//		Exp      time.Time `json:"e"`
//	}
//
//	func (s state) ExpiresAt() time.Time { return s.Exp }
//
//	tok, _ := token.Generate(state{"GOOGLE", time.Now().Add(10 * time.Minute)}, secret)
//	s, err := token.Parse[state](tok, secret, time.Now())
package token
