// internal/app/notify/mailer.go
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends plain-text email over SMTP. Works with Mailpit in
// dev (no auth) and SES-style authenticated SMTP in production.
type SMTPMailer struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Send delivers one message. Satisfies Mailer.
func (m *SMTPMailer) Send(e Email) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.FromName, m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", e.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", e.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(e.TextBody)

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, []string{e.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	return nil
}
