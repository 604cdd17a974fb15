package folio

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/views"
)

// Store wraps a SQLite database holding contact messages and project cover
// images. It implements contact.Sink so the inbox can receive the form.
type Store struct {
	db *sql.DB
}

var _ contact.Sink = (*Store)(nil)

// receivedLayout is fixed width so received_at sorts lexically.
const receivedLayout = "2006-01-02T15:04:05.000000Z"

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the page keep reading while the inbox writes; busy_timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    body TEXT NOT NULL,
    remote_ip TEXT NOT NULL DEFAULT '',
    received_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_received_at ON messages(received_at);

CREATE TABLE IF NOT EXISTS project_images (
    project_slug TEXT PRIMARY KEY,
    filename TEXT NOT NULL UNIQUE,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// Deliver stores m in the inbox.
func (s *Store) Deliver(ctx context.Context, m contact.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, body, remote_ip, received_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.Body, m.RemoteIP, m.ReceivedAt.UTC().Format(receivedLayout))
	if err != nil {
		return fmt.Errorf("folio: save message: %w", err)
	}
	return nil
}

// ListMessages returns every inbox message, newest first.
func (s *Store) ListMessages() ([]contact.Message, error) {
	rows, err := s.db.Query(`SELECT id, name, email, body, remote_ip, received_at FROM messages ORDER BY received_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []contact.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// GetMessage returns one message by id, or ErrNotFound.
func (s *Store) GetMessage(id string) (contact.Message, error) {
	return scanMessage(s.db.QueryRow(`SELECT id, name, email, body, remote_ip, received_at FROM messages WHERE id = ?`, id))
}

// CountMessages returns the size of the inbox.
func (s *Store) CountMessages() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

// DeleteMessage removes a message by id. Deleting a missing id is not an error.
func (s *Store) DeleteMessage(id string) error {
	_, err := s.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(r rowScanner) (contact.Message, error) {
	var m contact.Message
	var received string
	if err := r.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.RemoteIP, &received); err != nil {
		return contact.Message{}, err
	}
	t, err := time.Parse(receivedLayout, received)
	if err != nil {
		return contact.Message{}, fmt.Errorf("folio: message %s: bad timestamp %q: %w", m.ID, received, err)
	}
	m.ReceivedAt = t
	return m, nil
}

// SaveProjectImage records img as the cover of its project, replacing any
// previous cover.
func (s *Store) SaveProjectImage(img views.Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO project_images (project_slug, filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.ProjectSlug, img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// GetProjectImage returns the cover of a project, or ErrNotFound.
func (s *Store) GetProjectImage(slug string) (views.Image, error) {
	img := views.Image{ProjectSlug: slug}
	err := s.db.QueryRow(`SELECT filename, original_name, width, height, size, uploaded_at FROM project_images WHERE project_slug = ?`, slug).
		Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt)
	if err != nil {
		return views.Image{}, err
	}
	return img, nil
}

// ProjectImages returns every cover keyed by project slug.
func (s *Store) ProjectImages() (map[string]views.Image, error) {
	rows, err := s.db.Query(`SELECT project_slug, filename, original_name, width, height, size, uploaded_at FROM project_images`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make(map[string]views.Image)
	for rows.Next() {
		var img views.Image
		if err := rows.Scan(&img.ProjectSlug, &img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images[img.ProjectSlug] = img
	}
	return images, rows.Err()
}

// FilenameTaken reports whether any cover uses filename.
func (s *Store) FilenameTaken(filename string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM project_images WHERE filename = ?`, filename).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteProjectImage removes the cover record of a project.
func (s *Store) DeleteProjectImage(slug string) error {
	_, err := s.db.Exec(`DELETE FROM project_images WHERE project_slug = ?`, slug)
	return err
}
