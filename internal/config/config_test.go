package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func smtpEnv() map[string]string {
	return map[string]string{
		"EMAIL_USER": "relay@example.com",
		"EMAIL_PASS": "app-password",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(smtpEnv()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":5001" {
		t.Errorf("expected addr :5001, got %q", cfg.Addr)
	}
	if !cfg.IsProduction() {
		t.Error("expected production by default")
	}
	if cfg.Store.Driver != StoreFile || cfg.Store.MessagesPath != "data/messages.json" {
		t.Errorf("unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Relay.Driver != RelaySMTP || cfg.Relay.SMTPHost != "smtp.gmail.com" || cfg.Relay.SMTPPort != "587" {
		t.Errorf("unexpected relay defaults %+v", cfg.Relay)
	}
	if cfg.Relay.Timeout != 30*time.Second {
		t.Errorf("expected relay timeout 30s, got %v", cfg.Relay.Timeout)
	}
	if cfg.ContactRateLimit != 5 {
		t.Errorf("expected rate limit 5, got %d", cfg.ContactRateLimit)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	env := smtpEnv()
	env["PORT"] = "8080"
	env["APP_ENV"] = "development"
	env["STORE_DRIVER"] = "SQLite"
	env["SQLITE_PATH"] = "/var/lib/contact.db"
	env["RELAY_TIMEOUT"] = "5s"

	cfg, err := FromEnv(envMap(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.Addr)
	}
	if cfg.IsProduction() {
		t.Error("expected non-production")
	}
	if cfg.Store.Driver != StoreSQLite || cfg.Store.SQLitePath != "/var/lib/contact.db" {
		t.Errorf("unexpected store %+v", cfg.Store)
	}
	if cfg.Relay.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Relay.Timeout)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"smtp without credentials": {},
		"unknown store":            {"EMAIL_USER": "a", "EMAIL_PASS": "b", "STORE_DRIVER": "redis"},
		"postgres without url":     {"EMAIL_USER": "a", "EMAIL_PASS": "b", "STORE_DRIVER": "postgres"},
		"unknown relay":            {"RELAY_DRIVER": "carrier-pigeon"},
		"bad timeout":              {"EMAIL_USER": "a", "EMAIL_PASS": "b", "RELAY_TIMEOUT": "soon"},
		"zero rate limit":          {"EMAIL_USER": "a", "EMAIL_PASS": "b", "CONTACT_RATE_LIMIT": "0"},
		"negative proxies":         {"EMAIL_USER": "a", "EMAIL_PASS": "b", "TRUSTED_PROXY_COUNT": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestFromEnv_LogRelayNeedsNoCredentials(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"RELAY_DRIVER": "log"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Relay.Driver != RelayLog {
		t.Errorf("expected log relay, got %q", cfg.Relay.Driver)
	}
	if cfg.Relay.Account != "portfolio@localhost" {
		t.Errorf("expected placeholder account, got %q", cfg.Relay.Account)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	for _, k := range []string{"EMAIL_USER", "EMAIL_PASS", "APP_ENV", "RELAY_DRIVER", "STORE_DRIVER"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "EMAIL_USER=relay@example.com\nEMAIL_PASS=secret\nAPP_ENV=development\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Relay.Account != "relay@example.com" || cfg.Relay.Password != "secret" {
		t.Errorf("credentials not loaded from .env: %+v", cfg.Relay)
	}
	if cfg.IsProduction() {
		t.Error("expected APP_ENV=development from .env")
	}
}

// TestLoad_EnvironmentWins verifies .env never overrides the real environment.
func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("EMAIL_USER", "env@example.com")
	t.Setenv("EMAIL_PASS", "env-secret")
	t.Setenv("RELAY_DRIVER", "")
	t.Setenv("STORE_DRIVER", "")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("EMAIL_USER=file@example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Relay.Account != "env@example.com" {
		t.Errorf("expected environment value, got %q", cfg.Relay.Account)
	}
}
