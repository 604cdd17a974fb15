package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
)

func TestDefaultAnswers(t *testing.T) {
	tests := map[string]string{
		"jane-doe":     "Jane Doe",
		"ada_lovelace": "Ada Lovelace",
		"portfolio":    "Portfolio",
		".":            "My Portfolio",
	}
	for dir, want := range tests {
		if got := defaultAnswers(dir).Name; got != want {
			t.Errorf("defaultAnswers(%q).Name = %q, want %q", dir, got, want)
		}
	}
}

func TestInitCreatesServableSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "jane-doe")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init", dir, "--yes"})
	t.Cleanup(func() { initDefaults = false })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), "folio serve") {
		t.Errorf("next steps missing from output:\n%s", out.String())
	}

	cfg, err := folio.LoadConfig(filepath.Join(dir, "folio.yml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Jane Doe" || cfg.Contact.Sink != folio.SinkInbox {
		t.Errorf("config = %+v", cfg)
	}

	site, err := content.Load(filepath.Join(dir, "content", "content.yml"))
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	if site.Brand != "Jane Doe" || len(site.Projects) != 1 || site.Projects[0].Slug != "first-project" {
		t.Errorf("site = %+v", site)
	}

	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("read .env: %v", err)
	}
	if len(env) != 0 {
		t.Errorf(".env = %v, want no secrets without an admin password", env)
	}

	rootCmd.SetArgs([]string{"init", dir, "--yes"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if _, err := os.Stat(filepath.Join(dir, "folio.yml")); err != nil {
		t.Errorf("folio.yml: %v", err)
	}
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "folio dev\n" {
		t.Errorf("version output = %q", got)
	}
}
