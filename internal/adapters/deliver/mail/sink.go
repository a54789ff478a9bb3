// Package mail delivers notifications over SMTP, one message per
// recipient.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/bnema/dipwatch/internal/ports"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// DefaultTo receives category broadcasts that carry no subscriber
	// addressing of their own.
	DefaultTo []string
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type Sink struct {
	cfg   Config
	clock ports.Clock
	send  sendFunc
}

var _ ports.Deliverer = (*Sink)(nil)

func NewSink(cfg Config, clock ports.Clock) (*Sink, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail from address is required")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Sink{cfg: cfg, clock: clock, send: smtp.SendMail}, nil
}

func (s *Sink) Name() string { return "mail" }

func (s *Sink) Deliver(ctx context.Context, category string, recipients []string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(recipients) == 0 {
		recipients = s.cfg.DefaultTo
	}
	if len(recipients) == 0 {
		return nil
	}

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	now := s.clock.Now()

	var failed []error
	for _, recipient := range recipients {
		msg := formatMessage(s.cfg.From, recipient, text, now)
		if err := s.send(addr, auth, s.cfg.From, []string{recipient}, msg); err != nil {
			failed = append(failed, fmt.Errorf("send mail to %s: %w", recipient, err))
		}
	}

	return errors.Join(failed...)
}

// formatMessage renders a minimal RFC 5322 message with the notification
// text doubling as the subject.
func formatMessage(from, to, text string, date time.Time) []byte {
	subject := text
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	fmt.Fprintf(&sb, "Date: %s\r\n", date.Format(time.RFC1123Z))
	sb.WriteString("\r\n")
	sb.WriteString(text)

	return []byte(sb.String())
}
