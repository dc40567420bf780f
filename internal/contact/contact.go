// Package contact delivers messages from the site's contact form by email.
package contact

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("contact: SMTP credentials not configured")

// Message is a contact form submission. Field names match the form inputs.
type Message struct {
	Name  string `form:"fullName" json:"name" binding:"required,max=200"`
	Email string `form:"email" json:"email" binding:"required,email,max=320"`
	Body  string `form:"message" json:"message" binding:"required,max=5000"`
}

// Config holds SMTP settings.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends contact messages to the site owner.
type Mailer struct {
	cfg    Config
	send   SendFunc
	logger *zap.Logger
}

// NewMailer returns a Mailer that sends through net/smtp.
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger.With(zap.String("component", "contact")),
	}
}

// WithSender replaces the transport, mainly for tests.
func (m *Mailer) WithSender(send SendFunc) *Mailer {
	m.send = send
	return m
}

// Configured reports whether Send can work.
func (m *Mailer) Configured() bool {
	return m.cfg.User != "" && m.cfg.Pass != "" && m.cfg.Host != "" && m.cfg.Port != ""
}

// Send mails msg to the owner with Reply-To set to the visitor.
func (m *Mailer) Send(msg Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	to := m.cfg.To
	if to == "" {
		to = m.cfg.User
	}

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.User, []string{to}, Compose(msg, m.cfg.User, to)); err != nil {
		m.logger.Error("sending contact email", zap.Error(err))
		return fmt.Errorf("sending contact email: %w", err)
	}

	m.logger.Info("contact email sent", zap.String("from_name", msg.Name))
	return nil
}

// Compose builds the raw RFC 5322 message. Header values are stripped of
// line breaks so form input cannot inject headers.
func Compose(msg Message, from, to string) []byte {
	name := headerSafe(msg.Name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Body)

	return []byte("To: " + to + "\r\n" +
		"Subject: Portfolio Contact: " + name + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + headerSafe(msg.Email) + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}
