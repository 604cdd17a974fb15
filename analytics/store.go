package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	_ "modernc.org/sqlite"
)

// tsLayout is how timestamps are stored: fixed width UTC, so they compare
// lexically and SQLite's date functions understand them.
const tsLayout = "2006-01-02 15:04:05"

func ts(t time.Time) string { return t.UTC().Format(tsLayout) }

// sectionPattern matches section views recorded by the page script.
const sectionPattern = "/#%"

// Store provides database operations for analytics.
type Store struct {
	db *sql.DB
}

// NewStore creates a new analytics store.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create analytics dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the necessary tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			screen_size TEXT NOT NULL DEFAULT '',
			timestamp TEXT NOT NULL,
			duration_sec INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_visitor_id ON visits(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);

		CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_name ON bot_visits(bot_name);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

// migrate applies incremental schema migrations based on a version stored in the settings table.
func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	return s.SetSetting("schema_version", strconv.Itoa(currentSchemaVersion))
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// SaveVisit stores a new visit in the database.
func (s *Store) SaveVisit(v *Visit) error {
	_, err := s.db.Exec(`INSERT INTO visits
		(visitor_id, session_id, ip_hash, browser, os, device, path, referrer, screen_size, timestamp, duration_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.SessionID, v.IPHash, v.Browser, v.OS, v.Device, v.Path, v.Referrer, v.ScreenSize,
		ts(v.Timestamp), v.DurationSec)
	return err
}

// UpdateVisitDuration updates the duration of the most recent visit for a visitor+path.
func (s *Store) UpdateVisitDuration(visitorID, path string, durationSec int) error {
	_, err := s.db.Exec(`UPDATE visits SET duration_sec = ?
		WHERE id = (SELECT id FROM visits WHERE visitor_id = ? AND path = ? ORDER BY timestamp DESC, id DESC LIMIT 1)`,
		durationSec, visitorID, path)
	return err
}

// SectionSeen reports whether visitorID already has a view of path on the
// UTC day of now.
func (s *Store) SectionSeen(visitorID, path string, now time.Time) (bool, error) {
	day := now.UTC().Truncate(24 * time.Hour)
	n, err := s.count(context.Background(), `SELECT COUNT(*) FROM visits
		WHERE visitor_id = ? AND path = ? AND timestamp >= ?`, visitorID, path, ts(day))
	return n > 0, err
}

// SaveBotVisit stores a new bot visit in the database.
func (s *Store) SaveBotVisit(bv *BotVisit) error {
	_, err := s.db.Exec(`INSERT INTO bot_visits (bot_name, ip_hash, user_agent, path, timestamp) VALUES (?, ?, ?, ?, ?)`,
		bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, ts(bv.Timestamp))
	return err
}

// Page views exclude section views; those are reported on their own.
const pageViewFilter = `timestamp >= ? AND timestamp < ? AND path NOT LIKE '` + sectionPattern + `'`

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

// dimension runs a name/count query.
func (s *Store) dimension(ctx context.Context, query string, args ...any) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *Store) pages(ctx context.Context, query string, args ...any) ([]PageStat, error) {
	dims, err := s.dimension(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	pages := make([]PageStat, len(dims))
	for i, d := range dims {
		pages[i] = PageStat{Path: d.Name, Views: d.Count}
	}
	return pages, nil
}

func (s *Store) series(ctx context.Context, query string, args ...any) ([]DailyView, error) {
	dims, err := s.dimension(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	views := make([]DailyView, len(dims))
	for i, d := range dims {
		views[i] = DailyView{Date: d.Name, Views: d.Count}
	}
	return views, nil
}

// bucketFormat is the strftime pattern a series is grouped by.
func bucketFormat(hourly, monthly bool) string {
	switch {
	case hourly:
		return "%H:00"
	case monthly:
		return "%Y-%m"
	default:
		return "%Y-%m-%d"
	}
}

// GetStats returns aggregated statistics for the given time period.
func (s *Store) GetStats(from, to time.Time, hourly, monthly bool) (*Stats, error) {
	ctx := context.Background()
	stats := &Stats{
		Period:        from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopPages:      []PageStat{},
		SectionViews:  []PageStat{},
		LatestPages:   []LatestPageVisit{},
		BrowserStats:  []DimensionStat{},
		OSStats:       []DimensionStat{},
		DeviceStats:   []DimensionStat{},
		ReferrerStats: []DimensionStat{},
		DailyViews:    []DailyView{},
	}
	f, t := ts(from), ts(to)

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", name, err)
				}
				mu.Unlock()
			}
		}()
	}

	run("count views", func() error {
		n, err := s.count(ctx, `SELECT COUNT(*) FROM visits WHERE `+pageViewFilter, f, t)
		mu.Lock()
		stats.TotalViews = n
		mu.Unlock()
		return err
	})
	run("count unique visitors", func() error {
		n, err := s.count(ctx, `SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE `+pageViewFilter, f, t)
		mu.Lock()
		stats.UniqueVisitors = n
		mu.Unlock()
		return err
	})
	run("avg duration", func() error {
		n, err := s.count(ctx, `SELECT CAST(AVG(duration_sec) AS INTEGER) FROM visits WHERE duration_sec > 0 AND `+pageViewFilter, f, t)
		mu.Lock()
		stats.AvgDuration = n
		mu.Unlock()
		return err
	})
	run("top pages", func() error {
		pages, err := s.pages(ctx, `SELECT path, COUNT(*) AS n FROM visits WHERE `+pageViewFilter+`
			GROUP BY path ORDER BY n DESC, path LIMIT 10`, f, t)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TopPages = pages
		mu.Unlock()
		return nil
	})
	run("section views", func() error {
		pages, err := s.pages(ctx, `SELECT path, COUNT(DISTINCT visitor_id) AS n FROM visits
			WHERE timestamp >= ? AND timestamp < ? AND path LIKE '`+sectionPattern+`'
			GROUP BY path ORDER BY n DESC, path`, f, t)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.SectionViews = pages
		mu.Unlock()
		return nil
	})
	run("latest pages", func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT path, timestamp, browser FROM visits WHERE `+pageViewFilter+`
			ORDER BY timestamp DESC, id DESC LIMIT 20`, f, t)
		if err != nil {
			return err
		}
		defer rows.Close()
		latest := []LatestPageVisit{}
		for rows.Next() {
			var v LatestPageVisit
			if err := rows.Scan(&v.Path, &v.Timestamp, &v.Browser); err != nil {
				return err
			}
			latest = append(latest, v)
		}
		mu.Lock()
		stats.LatestPages = latest
		mu.Unlock()
		return rows.Err()
	})
	for _, d := range []struct {
		column string
		dst    *[]DimensionStat
	}{
		{"browser", &stats.BrowserStats},
		{"os", &stats.OSStats},
		{"device", &stats.DeviceStats},
		{"referrer", &stats.ReferrerStats},
	} {
		run(d.column+" stats", func() error {
			result, err := s.dimension(ctx, `SELECT `+d.column+`, COUNT(*) AS n FROM visits WHERE `+pageViewFilter+`
				GROUP BY `+d.column+` ORDER BY n DESC LIMIT 10`, f, t)
			if err != nil {
				return err
			}
			mu.Lock()
			*d.dst = result
			mu.Unlock()
			return nil
		})
	}
	run("views series", func() error {
		result, err := s.series(ctx, `SELECT strftime('`+bucketFormat(hourly, monthly)+`', timestamp) AS bucket, COUNT(*)
			FROM visits WHERE `+pageViewFilter+` GROUP BY bucket ORDER BY MIN(timestamp)`, f, t)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.DailyViews = result
		mu.Unlock()
		return nil
	})

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return stats, nil
}

// GetBotStats returns aggregated bot statistics for the given time period.
func (s *Store) GetBotStats(from, to time.Time, hourly, monthly bool) (*BotStats, error) {
	ctx := context.Background()
	f, t := ts(from), ts(to)
	stats := &BotStats{
		Period: from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
	}

	var err error
	if stats.TotalVisits, err = s.count(ctx, `SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp < ?`, f, t); err != nil {
		return nil, fmt.Errorf("count bot visits: %w", err)
	}
	if stats.TopBots, err = s.dimension(ctx, `SELECT bot_name, COUNT(*) AS n FROM bot_visits
		WHERE timestamp >= ? AND timestamp < ? GROUP BY bot_name ORDER BY n DESC LIMIT 10`, f, t); err != nil {
		return nil, fmt.Errorf("top bots: %w", err)
	}
	if stats.TopPages, err = s.pages(ctx, `SELECT path, COUNT(*) AS n FROM bot_visits
		WHERE timestamp >= ? AND timestamp < ? GROUP BY path ORDER BY n DESC LIMIT 10`, f, t); err != nil {
		return nil, fmt.Errorf("top bot pages: %w", err)
	}
	if stats.DailyVisits, err = s.series(ctx, `SELECT strftime('`+bucketFormat(hourly, monthly)+`', timestamp) AS bucket, COUNT(*)
		FROM bot_visits WHERE timestamp >= ? AND timestamp < ? GROUP BY bucket ORDER BY MIN(timestamp)`, f, t); err != nil {
		return nil, fmt.Errorf("bot views: %w", err)
	}

	return stats, nil
}

// CleanupOldVisits removes visits and bot visits older than the retention period.
func (s *Store) CleanupOldVisits(retentionDays int) error {
	cutoff := ts(time.Now().AddDate(0, 0, -retentionDays))
	if _, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup visits: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM bot_visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs periodic cleanup of old data. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldVisits(retentionDays); err != nil {
					log.Errorf("analytics: cleanup: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// GetRealtimeVisitors returns the number of unique visitors in the last 5 minutes.
func (s *Store) GetRealtimeVisitors() (int, error) {
	cutoff := ts(time.Now().Add(-5 * time.Minute))
	return s.count(context.Background(), `SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ?`, cutoff)
}
