package email

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

// Sender delivers a rendered video to a recipient address.
type Sender interface {
	Send(ctx context.Context, recipient, videoPath string) error
}

// SMTP configuration, read from the environment
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ConfigFromEnv reads TARJUMA_SMTP_* variables. Missing host or sender
// address disables delivery rather than failing.
func ConfigFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     os.Getenv("TARJUMA_SMTP_HOST"),
		Port:     envOr("TARJUMA_SMTP_PORT", "587"),
		Username: os.Getenv("TARJUMA_SMTP_USER"),
		Password: os.Getenv("TARJUMA_SMTP_PASS"),
		From:     os.Getenv("TARJUMA_SMTP_FROM"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SMTPSender sends a download notice over plain SMTP. The video itself
// is referenced by path, not attached; exports can run to gigabytes.
type SMTPSender struct {
	config SMTPConfig
}

func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if !config.Enabled() {
		return nil, fmt.Errorf("SMTP is not configured: set TARJUMA_SMTP_HOST and TARJUMA_SMTP_FROM")
	}
	return &SMTPSender{config: config}, nil
}

func (s *SMTPSender) Send(ctx context.Context, recipient, videoPath string) error {
	if recipient == "" {
		return fmt.Errorf("recipient address is required")
	}
	if !strings.Contains(recipient, "@") {
		return fmt.Errorf("invalid recipient address: %s", recipient)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := s.buildMessage(recipient, videoPath)
	addr := s.config.Host + ":" + s.config.Port

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *SMTPSender) buildMessage(recipient, videoPath string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + s.config.From + "\r\n")
	sb.WriteString("To: " + recipient + "\r\n")
	sb.WriteString("Subject: Your captioned video is ready\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString("Your export finished rendering.\r\n\r\n")
	sb.WriteString("File: " + filepath.Base(videoPath) + "\r\n")
	return []byte(sb.String())
}

// NopSender ignores every send. Used when SMTP is not configured and in
// tests.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, recipient, videoPath string) error {
	return nil
}
