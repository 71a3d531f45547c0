// Package mail delivers notification email over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Errors returned by the mailers
var (
	ErrMailNotConfigured = errors.New("mail: SMTP host is not configured")
	ErrNoRecipient       = errors.New("mail: recipient is empty")
)

// SMTPMailer sends plain text mail through an SMTP relay
type SMTPMailer struct {
	config config.SMTPConfig
	dialer *net.Dialer
}

// NewSMTPMailer creates a new SMTPMailer. The host is checked per send.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{
		config: cfg,
		dialer: &net.Dialer{Timeout: 10 * time.Second},
	}
}

// Send delivers msg. STARTTLS is used when offered, and PLAIN auth when a user is set.
func (m *SMTPMailer) Send(ctx context.Context, msg notification.Message) error {
	host := strings.TrimSpace(m.config.Host)
	if host == "" {
		return ErrMailNotConfigured
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return ErrNoRecipient
	}
	from := m.config.From
	if from == "" {
		from = m.config.User
	}

	conn, err := m.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(m.config.Port)))
	if err != nil {
		return fmt.Errorf("mail: dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if m.config.User != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", m.config.User, m.config.Password, host)); err != nil {
				return fmt.Errorf("mail: auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("mail: RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(from, to, msg.Subject, msg.Body, time.Now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("mail: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: end data: %w", err)
	}
	return client.Quit()
}

// buildMessage renders the RFC 5322 message with CRLF line endings
func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k + ": " + v + "\r\n")
	}
	header("From", from)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body = strings.ReplaceAll(body, "\r\n", "\n")
	for _, line := range strings.Split(body, "\n") {
		// dot-stuffing is done by the DATA writer
		b.WriteString(line + "\r\n")
	}
	return b.Bytes()
}

// LogMailer writes mail to the log instead of sending it
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs msg
func (m *LogMailer) Send(ctx context.Context, msg notification.Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	m.logger.Info("Email not sent, SMTP disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
	return nil
}

// New picks the SMTP mailer when SMTP is enabled, otherwise the log mailer
func New(cfg config.SMTPConfig, logger *zap.Logger) notification.Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}

var (
	_ notification.Mailer = (*SMTPMailer)(nil)
	_ notification.Mailer = (*LogMailer)(nil)
)
