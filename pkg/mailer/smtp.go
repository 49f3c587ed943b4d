package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"
)

// SMTPConfig holds the relay account used to submit mail.
type SMTPConfig struct {
	Host     string // e.g. "smtp.gmail.com"
	Port     string // e.g. "587"
	Username string
	Password string
	// Timeout bounds the whole SMTP conversation. Zero means no limit.
	Timeout time.Duration
}

// SMTPClient delivers messages through an SMTP submission server.
type SMTPClient struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPClient creates an SMTPClient.
func NewSMTPClient(cfg SMTPConfig) *SMTPClient {
	return &SMTPClient{cfg: cfg, now: time.Now}
}

var _ Client = (*SMTPClient)(nil)

// ErrAuthUnsupported is returned when credentials are configured but the
// server does not offer AUTH.
var ErrAuthUnsupported = errors.New("mailer: server does not support AUTH")

// Send dials the server, upgrades with STARTTLS when offered, authenticates
// with PLAIN when credentials are set and submits msg.
func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	body, err := msg.Bytes(c.now())
	if err != nil {
		return err
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(c.cfg.Host, c.cfg.Port))
	if err != nil {
		return fmt.Errorf("mailer: dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: greeting: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: c.cfg.Host}); err != nil {
			return fmt.Errorf("mailer: starttls: %w", err)
		}
	}
	if c.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			return ErrAuthUnsupported
		}
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("mailer: rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return fmt.Errorf("mailer: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	// The server has accepted DATA, so the message is queued either way.
	if err := client.Quit(); err != nil {
		slog.WarnContext(ctx, "smtp quit failed after delivery", "host", c.cfg.Host, "error", err)
	}
	return nil
}
