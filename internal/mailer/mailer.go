// Package mailer sends transactional email. The only message the application
// sends today is the password reset link.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"anex/internal/config"
	"anex/internal/middleware"
)

// Mailer delivers transactional messages.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, username, resetURL string) error
}

// New returns an SMTP-backed mailer when SMTP is configured, otherwise a
// mailer that only logs the message. The log fallback keeps development and
// test environments working without a mail relay.
func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg *config.Config
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	body := buildResetMessage(m.cfg.MailSender, to, username, resetURL)
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.MailSender, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "password reset email sent", slog.String("to", to))
	return nil
}

type logMailer struct{}

func (m *logMailer) SendPasswordReset(ctx context.Context, to, _, resetURL string) error {
	middleware.Logger.InfoContext(ctx, "password reset requested (mail disabled)",
		slog.String("to", to),
		slog.String("reset_url", resetURL))
	return nil
}

func buildResetMessage(from, to, username, resetURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Reset Your Password\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	fmt.Fprintf(&b, "Dear %s,\r\n\r\n", username)
	fmt.Fprintf(&b, "To reset your password visit the following link:\r\n\r\n%s\r\n\r\n", resetURL)
	b.WriteString("If you have not requested a password reset simply ignore this message.\r\n")
	return b.String()
}
