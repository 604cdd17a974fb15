// Package analytics counts page and section views without cookies or stored
// IP addresses. Visitors are identified by a salted hash that rotates with
// the installation, and crawlers are tallied apart from people.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

const saltKey = "hash_salt"

var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads the installation's hashing salt, creating it on first run.
// Call it once before serving.
func InitSalt(store *Store) error {
	var err error
	salt.once.Do(func() {
		salt.value, err = loadOrCreateSalt(store)
	})
	return err
}

func loadOrCreateSalt(store *Store) (string, error) {
	s, err := store.GetSetting(saltKey)
	if err != nil {
		return "", fmt.Errorf("analytics: read salt: %w", err)
	}
	if s != "" {
		return s, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("analytics: generate salt: %w", err)
	}
	s = hex.EncodeToString(b)
	if err := store.SetSetting(saltKey, s); err != nil {
		return "", fmt.Errorf("analytics: store salt: %w", err)
	}
	return s, nil
}

// digest hashes parts with the salt and keeps 16 hex characters.
func digest(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(salt.value))
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// HashIP returns the salted hash stored in place of an address.
func HashIP(ip string) string { return digest(ip) }

// GenerateVisitorID identifies a visitor by address and browser without
// keeping either.
func GenerateVisitorID(ip, userAgent string) string { return digest(ip, userAgent) }

// IsSectionPath reports whether path names a section of the page ("/#about")
// rather than a page.
func IsSectionPath(path string) bool {
	return strings.HasPrefix(path, "/#") && len(path) > 2
}

// Visit is one page or section view.
type Visit struct {
	ID          int64     `json:"-"`
	VisitorID   string    `json:"visitor_id"`
	SessionID   string    `json:"session_id"`
	IPHash      string    `json:"-"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"` // Desktop, Mobile, Tablet
	Path        string    `json:"path"`   // "/" or "/#section"
	Referrer    string    `json:"referrer"`
	ScreenSize  string    `json:"screen_size"` // e.g. "1920x1080"
	Timestamp   time.Time `json:"timestamp"`
	DurationSec int       `json:"duration_sec"` // 0 until the page is left
}

// BotVisit is one crawler request.
type BotVisit struct {
	ID        int64     `json:"-"`
	BotName   string    `json:"bot_name"`
	IPHash    string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the visitor report for one period.
type Stats struct {
	Period         string            `json:"period"`
	UniqueVisitors int               `json:"unique_visitors"`
	TotalViews     int               `json:"total_views"`
	AvgDuration    int               `json:"avg_duration_sec"`
	TopPages       []PageStat        `json:"top_pages"`
	SectionViews   []PageStat        `json:"section_views"` // distinct visitors per "/#section"
	LatestPages    []LatestPageVisit `json:"latest_pages"`
	BrowserStats   []DimensionStat   `json:"browsers"`
	OSStats        []DimensionStat   `json:"os"`
	DeviceStats    []DimensionStat   `json:"devices"`
	ReferrerStats  []DimensionStat   `json:"referrers"`
	DailyViews     []DailyView       `json:"daily_views"`
}

// BotStats is the crawler report for one period.
type BotStats struct {
	Period      string          `json:"period"`
	TotalVisits int             `json:"total_visits"`
	TopBots     []DimensionStat `json:"top_bots"`
	TopPages    []PageStat      `json:"top_pages"`
	DailyVisits []DailyView     `json:"daily_visits"`
}

type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

type LatestPageVisit struct {
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Browser   string `json:"browser"`
}

type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView is one bucket of a time series. Date is an hour, day or month
// depending on the period.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}
