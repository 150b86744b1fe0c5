// Package mail delivers report emails over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"

	"countysales/internal/config"
	"countysales/internal/ports"
)

// Mailer sends one message per report with every recipient blind-copied.
type Mailer struct {
	smtp       config.SMTPConfig
	from       string
	recipients []string
	send       func(addr string, auth smtp.Auth, e *email.Email) error
}

var _ ports.Mailer = (*Mailer)(nil)

// NewMailer wires SMTP settings and the recipient list. Mail is sent from
// the SMTP login.
func NewMailer(smtpCfg config.SMTPConfig, emailCfg config.EmailConfig) *Mailer {
	return &Mailer{
		smtp:       smtpCfg,
		from:       smtpCfg.User,
		recipients: emailCfg.Recipients,
		send:       sendSTARTTLS,
	}
}

func sendSTARTTLS(addr string, auth smtp.Auth, e *email.Email) error {
	return e.Send(addr, auth)
}

// Build assembles the MIME message without sending it.
func (m *Mailer) Build(msg ports.Message) (*email.Email, error) {
	e := email.NewEmail()
	e.From = m.from
	e.Bcc = append([]string(nil), m.recipients...)
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	for _, path := range msg.Attachments {
		if _, err := e.AttachFile(path); err != nil {
			return nil, fmt.Errorf("attach %s: %w", path, err)
		}
	}
	return e, nil
}

// Send delivers msg. Servers that do not offer AUTH are retried anonymously.
func (m *Mailer) Send(ctx context.Context, msg ports.Message) error {
	if len(m.recipients) == 0 {
		return fmt.Errorf("no email recipients configured")
	}
	if m.smtp.Server == "" {
		return fmt.Errorf("smtp server is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := m.Build(msg)
	if err != nil {
		return err
	}

	addr := m.smtp.Server + ":" + strconv.Itoa(m.smtp.Port)
	auth := smtp.PlainAuth("", m.smtp.User, m.smtp.Password, m.smtp.Server)
	err = m.send(addr, auth, e)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(addr, nil, e)
	}
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
