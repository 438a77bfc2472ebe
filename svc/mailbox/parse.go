package mailbox

import (
	"errors"
	"io"
	"regexp"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is the summary of one email returned to the dashboard.
type Message struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Text    string `json:"text"`

	seq uint32
}

var (
	tagRe   = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>|<[^>]+>`)
	spaceRe = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
)

// Parse reads an RFC 5322 message. Text is the first text/plain part, or
// the first text/html part with markup removed when there is no plain part.
func Parse(r io.Reader) (Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return Message{}, err
	}
	defer mr.Close()

	var msg Message
	msg.Subject, _ = mr.Header.Subject()
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		parts := make([]string, len(from))
		for i, a := range from {
			parts[i] = a.String()
		}
		msg.From = strings.Join(parts, ", ")
	} else {
		msg.From = mr.Header.Get("From")
	}

	var html string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// keep what was read; a broken trailing part should not lose the headers
			break
		}
		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		switch ct {
		case "text/plain":
			if msg.Text == "" {
				b, _ := io.ReadAll(p.Body)
				msg.Text = strings.TrimSpace(string(b))
			}
		case "text/html":
			if html == "" {
				b, _ := io.ReadAll(p.Body)
				html = string(b)
			}
		}
	}
	if msg.Text == "" && html != "" {
		msg.Text = strings.TrimSpace(spaceRe.ReplaceAllString(tagRe.ReplaceAllString(html, ""), "\n"))
	}
	return msg, nil
}
