// Package scaffold lays out a new folio site directory from embedded
// templates for `folio init`.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Templates contains all scaffold template files.
// Files with a .tmpl suffix are Go text/templates; the rest are copied.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	Brand    string
	Owner    string
	Headline string
	Email    string
	Domain   string
}

// renamed maps template names that cannot be dotfiles inside embed.FS.
var renamed = map[string]string{
	"dotenv":    ".env.example",
	"gitignore": ".gitignore",
}

// ErrExists is returned when Write would overwrite a file.
var ErrExists = errors.New("scaffold: file already exists")

// Write renders the templates into dir and returns the files it created,
// relative to dir. Existing files are never overwritten.
func Write(dir string, data Data) ([]string, error) {
	var created []string
	err := fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(rel, ".tmpl")
		if name, ok := renamed[filepath.Base(rel)]; ok {
			rel = filepath.Join(filepath.Dir(rel), name)
		}
		out := filepath.Join(dir, rel)

		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, out)
		}

		raw, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("scaffold: read %s: %w", path, err)
		}

		f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return fmt.Errorf("scaffold: create %s: %w", out, err)
		}
		defer f.Close()

		if strings.HasSuffix(path, ".tmpl") || path == root+"/dotenv" {
			tmpl, err := template.New(filepath.Base(path)).Parse(string(raw))
			if err != nil {
				return fmt.Errorf("scaffold: parse template %s: %w", path, err)
			}
			if err := tmpl.Execute(f, data); err != nil {
				return fmt.Errorf("scaffold: execute template %s: %w", path, err)
			}
		} else if _, err := f.Write(raw); err != nil {
			return fmt.Errorf("scaffold: write %s: %w", out, err)
		}

		created = append(created, rel)
		return nil
	})
	return created, err
}
