package credentials

import (
	"fmt"
	"maps"

	"github.com/loopinhq/loopin"
)

// Set holds at most one credential per provider for one browser session,
// plus the summarization backend token. It is not safe for concurrent use;
// each request loads its own.
type Set struct {
	creds        map[loopin.Provider]loopin.Credential
	BackendToken string
}

func NewSet() *Set {
	return &Set{creds: make(map[loopin.Provider]loopin.Credential)}
}

// Put stores c under p, replacing any earlier credential for p.
func (s *Set) Put(p loopin.Provider, c loopin.Credential) error {
	if c.Provider != p {
		return fmt.Errorf("%w: %s credential stored under %s", ErrProviderMismatch, c.Provider, p)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.creds[p] = c
	return nil
}

func (s *Set) Get(p loopin.Provider) (loopin.Credential, bool) {
	c, ok := s.creds[p]
	return c, ok
}

// AccessToken returns p's access token or "".
func (s *Set) AccessToken(p loopin.Provider) string {
	return s.creds[p].AccessToken
}

func (s *Set) Remove(p loopin.Provider) {
	delete(s.creds, p)
}

func (s *Set) Len() int { return len(s.creds) }

// All returns the stored credentials in loopin.Providers order.
func (s *Set) All() []loopin.Credential {
	out := make([]loopin.Credential, 0, len(s.creds))
	for _, p := range loopin.Providers() {
		if c, ok := s.creds[p]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{creds: maps.Clone(s.creds), BackendToken: s.BackendToken}
}
