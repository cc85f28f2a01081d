// Package mail delivers outbound notifications (magic links, first-open
// alerts). Delivery is fire-and-forget from the caller's perspective; the
// viewer flow never blocks on SMTP retries.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/openvault/openvault/internal/config"
)

type Sender interface {
	Send(to, subject, html, text string) error
}

type smtpSender struct {
	cfg config.MailConfig
}

func NewSender(cfg config.MailConfig) Sender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(to, subject, html, text string) error {
	from := strings.TrimSpace(s.cfg.From)
	if s.cfg.Host == "" || s.cfg.Port == 0 || from == "" {
		return fmt.Errorf("smtp config missing")
	}

	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(html)
	e.Text = []byte(text)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	tlsConfig := &tls.Config{ServerName: s.cfg.Host}
	if s.cfg.UseTLS || s.cfg.Port == 465 {
		return e.SendWithTLS(addr, auth, tlsConfig)
	}
	if s.cfg.StartTLS {
		return e.SendWithStartTLS(addr, auth, tlsConfig)
	}
	return e.Send(addr, auth)
}
