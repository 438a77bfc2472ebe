package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"

	"github.com/loopinhq/loopin"
	"github.com/loopinhq/loopin/pkg/logger"
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	GoogleAddr  string        `env:"IMAP_GOOGLE_ADDR" envDefault:"imap.gmail.com:993"`
	OutlookAddr string        `env:"IMAP_OUTLOOK_ADDR" envDefault:"outlook.office365.com:993"`
	ZohoAddr    string        `env:"IMAP_ZOHO_ADDR" envDefault:"imap.zoho.com:993"`
	YahooAddr   string        `env:"IMAP_YAHOO_ADDR" envDefault:"imap.mail.yahoo.com:993"`
	Timeout     time.Duration `env:"IMAP_TIMEOUT" envDefault:"10s"`
	MaxMessages int           `env:"IMAP_MAX_MESSAGES" envDefault:"50"`
}

func (c Config) addr(p loopin.Provider) string {
	switch p {
	case loopin.ProviderOutlook:
		return c.OutlookAddr
	case loopin.ProviderZoho:
		return c.ZohoAddr
	case loopin.ProviderYahoo:
		return c.YahooAddr
	}
	return c.GoogleAddr
}

// Client is the subset of *client.Client the reader uses.
type Client interface {
	Authenticate(auth sasl.Client) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

// Dialer opens an IMAP connection to addr.
type Dialer func(ctx context.Context, addr string, timeout time.Duration) (Client, error)

// DialTLS connects over implicit TLS.
func DialTLS(ctx context.Context, addr string, timeout time.Duration) (Client, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	d := &net.Dialer{Timeout: timeout}
	if deadline, ok := ctx.Deadline(); ok {
		d.Deadline = deadline
	}
	c, err := client.DialWithDialerTLS(d, addr, &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return nil, err
	}
	c.Timeout = timeout
	return c, nil
}

// Reader fetches recent unread messages over IMAP with XOAUTH2.
type Reader struct {
	cfg  Config
	dial Dialer
	log  *slog.Logger
	now  func() time.Time
}

type Option func(*Reader)

func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.log = l
		}
	}
}

func WithDialer(d Dialer) Option {
	return func(r *Reader) { r.dial = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

func NewReader(cfg Config, opts ...Option) *Reader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 50
	}
	if cfg.GoogleAddr == "" {
		cfg.GoogleAddr = "imap.gmail.com:993"
	}
	r := &Reader{cfg: cfg, dial: DialTLS, log: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recent returns the INBOX messages not yet seen that arrived since
// yesterday, newest first. Messages are fetched with BODY.PEEK so their
// \Seen flag is left alone.
func (r *Reader) Recent(ctx context.Context, p loopin.Provider, email, accessToken string) ([]Message, error) {
	if email == "" || accessToken == "" {
		return nil, ErrMissingCredentials
	}
	addr := r.cfg.addr(p)
	if addr == "" {
		return nil, fmt.Errorf("%w: no IMAP server for %s", ErrConnect, p)
	}

	c, err := r.dial(ctx, addr, r.cfg.Timeout)
	if err != nil {
		return nil, errors.Join(ErrConnect, err)
	}
	defer func() { _ = c.Logout() }()

	if err := c.Authenticate(NewXOAuth2Client(email, accessToken)); err != nil {
		return nil, errors.Join(ErrAuthentication, err)
	}
	if _, err := c.Select("INBOX", true); err != nil {
		return nil, errors.Join(ErrMailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = r.now().AddDate(0, 0, -1)
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, errors.Join(ErrMailbox, err)
	}
	if len(ids) == 0 {
		return []Message{}, nil
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > r.cfg.MaxMessages {
		ids = ids[:r.cfg.MaxMessages]
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var out []Message
	for m := range messages {
		body := m.GetBody(section)
		if body == nil {
			continue
		}
		parsed, err := Parse(body)
		if err != nil {
			r.log.WarnContext(ctx, "skip unparseable message",
				logger.Component("mailbox"),
				logger.Provider(p),
				logger.Error(err),
			)
			continue
		}
		parsed.seq = m.SeqNum
		out = append(out, parsed)
	}
	if err := <-done; err != nil {
		return nil, errors.Join(ErrMailbox, err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out, nil
}

// ProviderForAddress guesses the mail provider from an address domain.
func ProviderForAddress(email string) loopin.Provider {
	_, domain, _ := strings.Cut(strings.ToLower(email), "@")
	switch {
	case strings.HasPrefix(domain, "outlook.") || strings.HasPrefix(domain, "hotmail.") || strings.HasPrefix(domain, "live."):
		return loopin.ProviderOutlook
	case strings.HasPrefix(domain, "zoho") || strings.HasPrefix(domain, "zohomail."):
		return loopin.ProviderZoho
	case strings.HasPrefix(domain, "yahoo.") || strings.HasPrefix(domain, "ymail."):
		return loopin.ProviderYahoo
	}
	return loopin.ProviderGoogle
}
