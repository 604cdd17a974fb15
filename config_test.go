package folio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Portfolio" || cfg.Addr != ":3000" || cfg.PageCacheTTL != 5*time.Minute {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Contact.Sink != SinkDiscard {
		t.Errorf("Contact.Sink = %q, want discard", cfg.Contact.Sink)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yml")
	yml := `name: Jane Doe
url: https://jane.example
page_cache_ttl: 30s
contact:
  sink: inbox
  to: jane@example.com
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOLIO_ADDR", ":8080")
	t.Setenv("FOLIO_CONTACT__SINK", "inbox,webhook")
	t.Setenv("FOLIO_CONTACT__WEBHOOK_URL", "https://hooks.example/x")
	t.Setenv("FOLIO_ANALYTICS_ENABLED", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Jane Doe" || cfg.URL != "https://jane.example" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.PageCacheTTL != 30*time.Second {
		t.Errorf("PageCacheTTL = %v, want 30s", cfg.PageCacheTTL)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want env override", cfg.Addr)
	}
	if cfg.Contact.Sink != "inbox,webhook" || cfg.Contact.WebhookURL != "https://hooks.example/x" {
		t.Errorf("nested env override not applied: %+v", cfg.Contact)
	}
	if cfg.Contact.To != "jane@example.com" {
		t.Errorf("Contact.To = %q", cfg.Contact.To)
	}
	if !cfg.AnalyticsEnabled {
		t.Error("AnalyticsEnabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"FOLIO_ADMIN_PASSWORD":       "admin_password",
		"FOLIO_CONTACT__SMTP_HOST":   "contact.smtp_host",
		"FOLIO_PAGE_CACHE_TTL":       "page_cache_ttl",
		"FOLIO_CONTACT__WEBHOOK_URL": "contact.webhook_url",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := SiteConfig{
		AdminPassword: "secret",
		LogLevel:      "loud",
		Contact:       ContactConfig{Sink: "smtp, pigeon"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"session_secret", "log_level", "smtp_host", `"pigeon"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestSaveOmitsZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yml")
	cfg := SiteConfig{Name: "Jane", Contact: ContactConfig{Sink: SinkInbox}}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "addr") || strings.Contains(string(b), "page_cache_ttl") {
		t.Errorf("zero values written:\n%s", b)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Name != "Jane" || got.Contact.Sink != SinkInbox || got.Addr != ":3000" {
		t.Errorf("reloaded = %+v", got)
	}
}
