package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "BUDGET_WINDOW", "NOTIFY_WORKERS", "JWT_EXPIRES_IN", "SMTP_HOST", "SMTP_FROM", "SMTP_USER"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.BudgetWindow != BudgetWindowPeriod {
		t.Errorf("expected period window, got %s", cfg.BudgetWindow)
	}
	if cfg.NotifyWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.NotifyWorkers)
	}
	if cfg.JWTExpirationDur != 24*time.Hour {
		t.Errorf("expected 24h expiry, got %s", cfg.JWTExpirationDur)
	}
	if cfg.MailConfigured() {
		t.Error("expected mail to be unconfigured without SMTP_HOST")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BUDGET_WINDOW", "calendar_month")
	t.Setenv("NOTIFY_WORKERS", "0")
	t.Setenv("NOTIFY_TIMEOUT", "3s")
	t.Setenv("PUSH_ENABLED", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("SMTP_FROM", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BudgetWindow != BudgetWindowCalendarMonth {
		t.Errorf("expected calendar_month, got %s", cfg.BudgetWindow)
	}
	if cfg.NotifyWorkers != 1 {
		t.Errorf("expected workers clamped to 1, got %d", cfg.NotifyWorkers)
	}
	if cfg.NotifyTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.NotifyTimeout)
	}
	if !cfg.PushEnabled {
		t.Error("expected push enabled")
	}
	if cfg.SMTPFrom != "mailer@example.com" {
		t.Errorf("expected SMTP_FROM to default to SMTP_USER, got %q", cfg.SMTPFrom)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BUDGET_WINDOW", "fortnightly")
	t.Setenv("NOTIFY_QUEUE_SIZE", "lots")
	t.Setenv("JWT_EXPIRES_IN", "forever")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BudgetWindow != BudgetWindowPeriod {
		t.Errorf("expected fallback to period, got %s", cfg.BudgetWindow)
	}
	if cfg.NotifyQueueSize != 100 {
		t.Errorf("expected fallback queue size 100, got %d", cfg.NotifyQueueSize)
	}
	if cfg.JWTExpirationDur != 24*time.Hour {
		t.Errorf("expected fallback 24h, got %s", cfg.JWTExpirationDur)
	}
}
