package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/cookie"
)

const (
	cookiePrefix  = "loopin_"
	backendCookie = cookiePrefix + "backend"

	// chunkSize keeps name+value of every cookie well under the 4096 byte
	// limit browsers apply.
	chunkSize = 3800
	maxChunks = 8
)

var fields = []string{"access_token", "refresh_token", "connected_email", "expires_at"}

// CookieStore keeps every credential field in its own AES-GCM encrypted,
// HttpOnly cookie named loopin_{provider}_{field}. Sealed values longer
// than a single cookie can hold continue in name_1, name_2 and so on.
// Nothing is stored on the server.
type CookieStore struct {
	cookies *cookie.Manager
}

func NewCookieStore(cookies *cookie.Manager) *CookieStore {
	return &CookieStore{cookies: cookies}
}

func chunkName(name string, i int) string {
	if i == 0 {
		return name
	}
	return name + "_" + strconv.Itoa(i)
}

// Load skips cookies that are missing, undecryptable or malformed.
func (s *CookieStore) Load(_ context.Context, r *http.Request) (*Set, error) {
	set := NewSet()
	for _, p := range loopin.Providers() {
		m := make(map[string]string, len(fields))
		for _, f := range fields {
			if v, ok := s.read(r, cookiePrefix+key(p, f)); ok {
				m[key(p, f)] = v
			}
		}
		if c, ok := decode(p, m); ok {
			set.creds[p] = c
		}
	}
	if tok, ok := s.read(r, backendCookie); ok {
		set.BackendToken = Canonical(tok)
	}
	return set, nil
}

// Save writes the cookies of every stored field and expires the ones the
// request carries for fields or providers no longer in set.
func (s *CookieStore) Save(_ context.Context, w http.ResponseWriter, r *http.Request, set *Set) error {
	for _, p := range loopin.Providers() {
		var values map[string]string
		if c, ok := set.Get(p); ok {
			values = encode(c)
		}
		for _, f := range fields {
			name := cookiePrefix + key(p, f)
			v, ok := values[key(p, f)]
			if !ok {
				s.expire(w, r, name, 0)
				continue
			}
			if err := s.write(w, r, name, v); err != nil {
				return errors.Join(ErrStore, err)
			}
		}
	}

	if set.BackendToken == "" {
		s.expire(w, r, backendCookie, 0)
		return nil
	}
	if err := s.write(w, r, backendCookie, set.BackendToken); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

// write seals value under name and spreads it over as many chunk cookies
// as needed.
func (s *CookieStore) write(w http.ResponseWriter, r *http.Request, name, value string) error {
	sealed, err := s.cookies.Seal(name, []byte(value))
	if err != nil {
		return err
	}
	if len(sealed) > chunkSize*maxChunks {
		return fmt.Errorf("cookie %s: sealed value of %d bytes is too large", name, len(sealed))
	}
	n := 0
	for ; len(sealed) > 0; n++ {
		part := sealed[:min(len(sealed), chunkSize)]
		sealed = sealed[len(part):]
		s.cookies.Set(w, chunkName(name, n), part)
	}
	s.expire(w, r, name, n)
	return nil
}

// read joins the chunks of name and opens the result.
func (s *CookieStore) read(r *http.Request, name string) (string, bool) {
	var b strings.Builder
	for i := range maxChunks {
		c, err := r.Cookie(chunkName(name, i))
		if err != nil {
			break
		}
		b.WriteString(c.Value)
	}
	if b.Len() == 0 {
		return "", false
	}
	plain, err := s.cookies.Open(name, b.String())
	if err != nil {
		return "", false
	}
	return string(plain), true
}

// expire deletes the chunks of name from index from on that r carries.
func (s *CookieStore) expire(w http.ResponseWriter, r *http.Request, name string, from int) {
	for i := from; i < maxChunks; i++ {
		if _, err := r.Cookie(chunkName(name, i)); err == nil {
			s.cookies.Delete(w, chunkName(name, i))
		}
	}
}
