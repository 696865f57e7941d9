// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer sends transactional email using the mail settings stored
// in the database. The settings row is read fresh on every send, so an
// admin's changes take effect immediately without restarting the process.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/wneessen/go-mail"

	"backoffice/internal/markdown"
	"backoffice/internal/models"
)

// defaultVerificationTemplate is used when the admin has not customised
// the verification email body. Markdown with {{name}} and
// {{verification_url}} placeholders.
const defaultVerificationTemplate = `# Hello {{name}},

Please confirm your email address by opening the link below:

{{verification_url}}

If you did not create an account, no further action is required.`

// SettingsSource provides the current email settings row.
type SettingsSource interface {
	Get() (*models.EmailSetting, error)
}

// Mailer sends email according to the stored settings. With the "log"
// driver messages are written to the application log instead of delivered,
// which is the safe default for development.
type Mailer struct {
	settings SettingsSource
	appName  string
}

func New(settings SettingsSource, appName string) *Mailer {
	return &Mailer{settings: settings, appName: appName}
}

// SendTest sends a short fixed message so an admin can confirm the saved
// mail settings actually deliver.
func (m *Mailer) SendTest(ctx context.Context, to string) error {
	cfg, err := m.settings.Get()
	if err != nil {
		return fmt.Errorf("load mail settings: %w", err)
	}

	subject := fmt.Sprintf("%s test email", m.appName)
	html, err := markdown.ToHTML(fmt.Sprintf(
		"# Test email\n\nThis message confirms that the mail settings for **%s** are working.",
		m.appName,
	))
	if err != nil {
		return fmt.Errorf("render test email: %w", err)
	}

	return m.deliver(ctx, cfg, to, subject, html)
}

// SendVerification sends the address-verification email for a user. The
// body comes from the admin-editable Markdown template; {{name}} and
// {{verification_url}} are substituted before rendering.
func (m *Mailer) SendVerification(ctx context.Context, user *models.User, verifyURL string) error {
	cfg, err := m.settings.Get()
	if err != nil {
		return fmt.Errorf("load mail settings: %w", err)
	}
	if !cfg.EnableVerification {
		return nil
	}

	tmpl := defaultVerificationTemplate
	if cfg.VerificationTemplate != nil && strings.TrimSpace(*cfg.VerificationTemplate) != "" {
		tmpl = *cfg.VerificationTemplate
	}
	body := RenderTemplate(tmpl, map[string]string{
		"name":             user.Name,
		"verification_url": verifyURL,
	})
	html, err := markdown.ToHTML(body)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	subject := fmt.Sprintf("Verify your email address for %s", m.appName)
	return m.deliver(ctx, cfg, user.Email, subject, html)
}

// RenderTemplate substitutes {{key}} placeholders in a template body.
// Unknown placeholders are left in place.
func RenderTemplate(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// deliver hands the message to SMTP, or logs it for the "log" driver.
func (m *Mailer) deliver(ctx context.Context, cfg *models.EmailSetting, to, subject, html string) error {
	if !cfg.IsSMTP() {
		slog.Info("mail (log driver)", "to", to, "subject", subject, "from", cfg.MailFromAddress)
		return nil
	}
	if cfg.MailHost == nil || *cfg.MailHost == "" {
		return fmt.Errorf("smtp driver selected but mail host is empty")
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(cfg.MailFromName, cfg.MailFromAddress); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	client, err := m.client(cfg)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// client builds an SMTP client from the settings snapshot.
func (m *Mailer) client(cfg *models.EmailSetting) (*mail.Client, error) {
	opts := []mail.Option{}
	if cfg.MailPort != nil && *cfg.MailPort != "" {
		port, err := strconv.Atoi(*cfg.MailPort)
		if err != nil {
			return nil, fmt.Errorf("invalid mail port %q: %w", *cfg.MailPort, err)
		}
		opts = append(opts, mail.WithPort(port))
	}
	if cfg.MailUsername != nil && *cfg.MailUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(*cfg.MailUsername),
		)
		if cfg.MailPassword != nil {
			opts = append(opts, mail.WithPassword(*cfg.MailPassword))
		}
	}

	encryption := ""
	if cfg.MailEncryption != nil {
		encryption = strings.ToLower(*cfg.MailEncryption)
	}
	switch encryption {
	case "ssl", "smtps":
		opts = append(opts, mail.WithSSL())
	case "tls", "starttls":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	return mail.NewClient(*cfg.MailHost, opts...)
}
