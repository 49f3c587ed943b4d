// Package mailer relays contact notifications to the site owner.
// The SMTP client talks to a mail server directly; the AMQP client hands the
// message to a queue consumed by a separate mail worker.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"
)

// Message is one outbound email with a plain-text and an HTML variant.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Client sends a Message. A nil error means the relay accepted the message.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// ErrInvalidMessage is returned when a message has no sender or recipient,
// or when a header value could not be written as a single header line.
var ErrInvalidMessage = errors.New("mailer: invalid message")

func (m Message) validate() error {
	if m.From == "" || m.To == "" {
		return fmt.Errorf("%w: needs from and to", ErrInvalidMessage)
	}
	for _, h := range []struct{ name, value string }{
		{"From", m.From},
		{"To", m.To},
		{"Reply-To", m.ReplyTo},
		{"Subject", m.Subject},
	} {
		if strings.ContainsAny(h.value, "\r\n") {
			return fmt.Errorf("%w: line break in %s", ErrInvalidMessage, h.name)
		}
	}
	if m.ReplyTo != "" {
		if _, err := mail.ParseAddress(m.ReplyTo); err != nil {
			return fmt.Errorf("%w: reply-to: %v", ErrInvalidMessage, err)
		}
	}
	return nil
}

// replyTo renders ReplyTo in canonical form; empty when unset.
func (m Message) replyTo() string {
	if m.ReplyTo == "" {
		return ""
	}
	addr, err := mail.ParseAddress(m.ReplyTo)
	if err != nil {
		return ""
	}
	return addr.String()
}

// Bytes renders m as an RFC 5322 message with a multipart/alternative body.
func (m Message) Bytes(now time.Time) ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := []struct{ key, value string }{
		{"From", m.From},
		{"To", m.To},
		{"Reply-To", m.replyTo()},
		{"Subject", mime.QEncoding.Encode("utf-8", m.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	var head bytes.Buffer
	for _, h := range header {
		if h.value == "" {
			continue
		}
		fmt.Fprintf(&head, "%s: %s\r\n", h.key, h.value)
	}
	head.WriteString("\r\n")

	for _, part := range []struct{ contentType, body string }{
		{"text/plain; charset=utf-8", m.Text},
		{"text/html; charset=utf-8", m.HTML},
	} {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("mailer: create part: %w", err)
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("mailer: write part: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("mailer: write part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mailer: close body: %w", err)
	}

	return append(head.Bytes(), buf.Bytes()...), nil
}
