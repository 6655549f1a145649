package email

import (
	"context"
	"strings"
	"testing"
)

func TestConfigEnabled(t *testing.T) {
	tests := []struct {
		name   string
		config SMTPConfig
		want   bool
	}{
		{"full", SMTPConfig{Host: "smtp.example.com", From: "a@example.com"}, true},
		{"missing host", SMTPConfig{From: "a@example.com"}, false},
		{"missing from", SMTPConfig{Host: "smtp.example.com"}, false},
		{"empty", SMTPConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSMTPSenderRequiresConfig(t *testing.T) {
	if _, err := NewSMTPSender(SMTPConfig{}); err == nil {
		t.Error("expected error for unconfigured SMTP")
	}
}

func TestSendRejectsBadRecipient(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "a@example.com"})
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}

	if err := s.Send(context.Background(), "", "/tmp/out.mp4"); err == nil {
		t.Error("expected error for empty recipient")
	}
	if err := s.Send(context.Background(), "not-an-address", "/tmp/out.mp4"); err == nil {
		t.Error("expected error for malformed recipient")
	}
}

func TestSendHonorsCancelledContext(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "a@example.com"})
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Send(ctx, "b@example.com", "/tmp/out.mp4"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestBuildMessage(t *testing.T) {
	s := &SMTPSender{config: SMTPConfig{From: "a@example.com"}}
	msg := string(s.buildMessage("b@example.com", "/renders/tarjuma-2026.mp4"))

	for _, want := range []string{"From: a@example.com", "To: b@example.com", "Subject:", "tarjuma-2026.mp4"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if strings.Contains(msg, "/renders/") {
		t.Error("message should not leak the local directory layout")
	}
}

func TestNopSender(t *testing.T) {
	if err := (NopSender{}).Send(context.Background(), "anyone", "anything"); err != nil {
		t.Errorf("NopSender.Send: %v", err)
	}
}
