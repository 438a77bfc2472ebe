package credentials

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/loopinhq/loopin"
)

const backendTokenKey = "backend_token"

// Canonical decodes a legacy JSON-quoted value ("\"abc\"") exactly once.
// Plain values are returned unchanged.
func Canonical(v string) string {
	if len(v) < 2 || !strings.HasPrefix(v, `"`) || !strings.HasSuffix(v, `"`) {
		return v
	}
	var s string
	if err := json.Unmarshal([]byte(v), &s); err != nil {
		return v
	}
	return s
}

func key(p loopin.Provider, field string) string {
	return p.Key() + "_" + field
}

// encode flattens c into the {provider}_field keys.
func encode(c loopin.Credential) map[string]string {
	m := map[string]string{key(c.Provider, "access_token"): c.AccessToken}
	if c.RefreshToken != "" {
		m[key(c.Provider, "refresh_token")] = c.RefreshToken
	}
	if c.ConnectedEmail != "" {
		m[key(c.Provider, "connected_email")] = c.ConnectedEmail
	}
	if !c.ExpiresAt.IsZero() {
		m[key(c.Provider, "expires_at")] = c.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return m
}

// decode reads p's credential from m. ok is false when there is no access
// token.
func decode(p loopin.Provider, m map[string]string) (loopin.Credential, bool) {
	c := loopin.Credential{
		Provider:       p,
		AccessToken:    Canonical(m[key(p, "access_token")]),
		RefreshToken:   Canonical(m[key(p, "refresh_token")]),
		ConnectedEmail: Canonical(m[key(p, "connected_email")]),
	}
	if c.AccessToken == "" {
		return loopin.Credential{}, false
	}
	if exp := Canonical(m[key(p, "expires_at")]); exp != "" {
		c.ExpiresAt, _ = time.Parse(time.RFC3339, exp)
	}
	return c, true
}
