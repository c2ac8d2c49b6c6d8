// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
Package mail delivers transactional email for the Mesh platform.

Currently the only transactional message is the account verification link sent
at registration time. Delivery goes over plain SMTP; when no SMTP host is
configured the mailer degrades to logging the verification link, which keeps
local development free of external dependencies.
*/
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/meshnetwork/mesh/internal/platform/config"
)

// Mailer sends transactional email to a single recipient.
type Mailer interface {
	// SendVerification delivers the email-verification link for a freshly
	// registered account. The token is single-use and expires on its own.
	SendVerification(ctx context.Context, recipient string, token string) error
}

// # SMTP Implementation

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer backed by the configured SMTP relay.
func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

/*
SendVerification sends the verification link to a newly registered address.

Parameters:
  - ctx: Request context (used for cancellation-aware logging only; net/smtp
    does not accept a context).
  - recipient: Destination email address.
  - token: The opaque verification token to embed in the link.

Returns:
  - error: Delivery failure, or nil. When mail is unconfigured the link is
    logged and nil is returned.
*/
func (m *SMTPMailer) SendVerification(ctx context.Context, recipient string, token string) error {

	verifyLink := fmt.Sprintf("%s/api/v1/users/verify-email/%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)

	// Development fallback: no relay configured, surface the link in the logs.
	if !m.cfg.MailConfigured() {
		m.logger.InfoContext(ctx, "mail_delivery_skipped",
			slog.String("reason", "smtp not configured"),
			slog.String("recipient", recipient),
			slog.String("verify_link", verifyLink),
		)
		return nil
	}

	message := buildVerificationMessage(m.cfg.MailFrom, recipient, verifyLink)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	// Relays without credentials (e.g., a local smarthost) get a nil auth.
	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{recipient}, message); err != nil {
		return fmt.Errorf("mail_send_verification_failed: %w", err)
	}

	m.logger.InfoContext(ctx, "mail_verification_sent", slog.String("recipient", recipient))
	return nil
}

// buildVerificationMessage assembles an RFC 5322 plain-text message.
func buildVerificationMessage(from, to, link string) []byte {
	var builder strings.Builder

	builder.WriteString("From: Mesh <" + from + ">\r\n")
	builder.WriteString("To: " + to + "\r\n")
	builder.WriteString("Subject: Verify your Mesh account\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	builder.WriteString("\r\n")
	builder.WriteString("Welcome to Mesh!\r\n\r\n")
	builder.WriteString("Open the link below to verify your email address and unlock posting:\r\n\r\n")
	builder.WriteString(link + "\r\n\r\n")
	builder.WriteString("The link expires in 24 hours. If you did not create this account, ignore this message.\r\n")

	return []byte(builder.String())
}
