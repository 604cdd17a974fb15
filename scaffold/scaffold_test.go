package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestWriteRendersTemplates(t *testing.T) {
	dir := t.TempDir()
	data := Data{Brand: "Jane: Portfolio", Owner: "Jane Doe", Headline: "Hi", Email: "jane@example.com", Domain: "jane.dev"}

	created, err := Write(dir, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, want := range []string{
		filepath.Join("content", "content.yml"),
		filepath.Join("content", "projects", "first-project.md"),
		filepath.Join("public", "favicon.svg"),
		".env.example",
		".gitignore",
	} {
		if !slices.Contains(created, want) {
			t.Errorf("%s not created (got %v)", want, created)
		}
	}

	yml, err := os.ReadFile(filepath.Join(dir, "content", "content.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(yml), `brand: "Jane: Portfolio"`) {
		t.Errorf("brand not quoted:\n%s", yml)
	}
	if !strings.Contains(string(yml), `"mailto:jane@example.com"`) {
		t.Errorf("email social missing:\n%s", yml)
	}

	env, _ := os.ReadFile(filepath.Join(dir, ".env.example"))
	if !strings.Contains(string(env), "FOLIO_URL=https://jane.dev") {
		t.Errorf(".env.example not rendered:\n%s", env)
	}
}

func TestWriteNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Write(dir, Data{Brand: "x", Owner: "x", Headline: "x", Domain: "x"})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("err = %v, want ErrExists", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if string(b) != "mine\n" {
		t.Error("existing file was modified")
	}
}
