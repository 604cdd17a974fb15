package analytics

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Limiter caps beacons per client IP.
type Limiter interface {
	Allow(key string) bool
}

// Handler serves the collect beacon and the admin reports.
type Handler struct {
	store   *Store
	limiter Limiter
	now     func() time.Time
}

// NewHandler returns a Handler over store. A nil limiter accepts every
// beacon.
func NewHandler(store *Store, limiter Limiter) *Handler {
	return &Handler{
		store:   store,
		limiter: limiter,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes mounts the public beacon and, behind authMiddleware, the
// JSON reports.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc) {
	e.POST("/api/analytics/collect", h.Collect)

	admin := e.Group("/admin/analytics", authMiddleware)
	admin.GET("/api/stats", h.GetStats)
	admin.GET("/api/bot-stats", h.GetBotStats)
}

// Beacon is what the page script posts: a page view on load, a section view
// the first time a section shows, and the time on page when the tab hides.
type Beacon struct {
	Path        string `json:"path"`
	Referrer    string `json:"referrer"`
	ScreenSize  string `json:"screen_size"`
	UserAgent   string `json:"user_agent"`
	DurationSec int    `json:"duration_sec"`
}

const maxDurationSec = 24 * 60 * 60

var errBadBeacon = errors.New("analytics: invalid beacon")

func (b Beacon) validate() error {
	if !strings.HasPrefix(b.Path, "/") {
		return fmt.Errorf("%w: path must start with /", errBadBeacon)
	}
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"path", b.Path, 2048},
		{"referrer", b.Referrer, 2048},
		{"screen_size", b.ScreenSize, 32},
		{"user_agent", b.UserAgent, 512},
	} {
		if len(f.value) > f.max {
			return fmt.Errorf("%w: %s longer than %d", errBadBeacon, f.name, f.max)
		}
	}
	if b.DurationSec < 0 || b.DurationSec > maxDurationSec {
		return fmt.Errorf("%w: duration_sec out of range", errBadBeacon)
	}
	return nil
}

// Collect records one beacon. It always answers 204 once the beacon is
// accepted, so storage failures are only logged.
func (h *Handler) Collect(c echo.Context) error {
	ip := c.RealIP()
	if h.limiter != nil && !h.limiter.Allow(ip) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var b Beacon
	if err := c.Bind(&b); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if err := b.validate(); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if b.UserAgent == "" {
		b.UserAgent = c.Request().UserAgent()
	}

	if err := h.record(b, ip); err != nil {
		c.Logger().Errorf("analytics: record %s: %v", b.Path, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) record(b Beacon, ip string) error {
	now := h.now()
	if IsBot(b.UserAgent) {
		return h.store.SaveBotVisit(&BotVisit{
			BotName:   ExtractBotName(b.UserAgent),
			IPHash:    HashIP(ip),
			UserAgent: b.UserAgent,
			Path:      b.Path,
			Timestamp: now,
		})
	}

	visitorID := GenerateVisitorID(ip, b.UserAgent)

	// Time on page belongs to the view already stored.
	if b.DurationSec > 0 {
		return h.store.UpdateVisitDuration(visitorID, b.Path, b.DurationSec)
	}

	if IsSectionPath(b.Path) {
		seen, err := h.store.SectionSeen(visitorID, b.Path, now)
		if err != nil || seen {
			return err
		}
	}

	browser, os, device := ParseUserAgent(b.UserAgent)
	return h.store.SaveVisit(&Visit{
		VisitorID:  visitorID,
		SessionID:  digest(visitorID, now.Format("2006-01-02")),
		IPHash:     HashIP(ip),
		Browser:    browser,
		OS:         os,
		Device:     device,
		Path:       b.Path,
		Referrer:   CleanReferrer(b.Referrer),
		ScreenSize: b.ScreenSize,
		Timestamp:  now,
	})
}

// period is the window a report covers.
type period struct {
	name     string
	days     int
	hourly   bool // 24 hourly buckets ending now
	monthly  bool
	from, to time.Time
}

// parsePeriod resolves the period query parameter at now. Unknown names
// mean a week.
func parsePeriod(name string, now time.Time) period {
	p := period{name: name}
	switch name {
	case "today":
		p.days, p.hourly = 1, true
	case "month":
		p.days = 30
	case "year":
		p.days, p.monthly = 365, true
	default:
		p.name, p.days = "week", 7
	}
	if p.hourly {
		p.from, p.to = now.Truncate(time.Hour).Add(-23*time.Hour), now
		return p
	}
	p.from = now.AddDate(0, 0, -p.days).Truncate(24 * time.Hour)
	p.to = now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	return p
}

// StatsResponse is the visitor report.
type StatsResponse struct {
	Stats      *Stats `json:"stats"`
	Realtime   int    `json:"realtime_visitors"`
	PeriodDays int    `json:"period_days"`
	Hourly     bool   `json:"hourly"`
	Monthly    bool   `json:"monthly"`
}

// GetStats reports visitors, pages and sections for ?period=.
func (h *Handler) GetStats(c echo.Context) error {
	p := parsePeriod(c.QueryParam("period"), h.now())
	stats, err := h.store.GetStats(p.from, p.to, p.hourly, p.monthly)
	if err != nil {
		return reportError(c, err)
	}
	if p.hourly {
		stats.DailyViews = fillHourlyData(stats.DailyViews, p.from)
	}
	realtime, err := h.store.GetRealtimeVisitors()
	if err != nil {
		c.Logger().Warnf("analytics: realtime visitors: %v", err)
	}
	return c.JSON(http.StatusOK, StatsResponse{
		Stats:      stats,
		Realtime:   realtime,
		PeriodDays: p.days,
		Hourly:     p.hourly,
		Monthly:    p.monthly,
	})
}

// BotStatsResponse is the crawler report.
type BotStatsResponse struct {
	Stats      *BotStats `json:"stats"`
	PeriodDays int       `json:"period_days"`
	Hourly     bool      `json:"hourly"`
	Monthly    bool      `json:"monthly"`
}

// GetBotStats reports crawler traffic for ?period=.
func (h *Handler) GetBotStats(c echo.Context) error {
	p := parsePeriod(c.QueryParam("period"), h.now())
	stats, err := h.store.GetBotStats(p.from, p.to, p.hourly, p.monthly)
	if err != nil {
		return reportError(c, err)
	}
	if p.hourly {
		stats.DailyVisits = fillHourlyData(stats.DailyVisits, p.from)
	}
	return c.JSON(http.StatusOK, BotStatsResponse{
		Stats:      stats,
		PeriodDays: p.days,
		Hourly:     p.hourly,
		Monthly:    p.monthly,
	})
}

func reportError(c echo.Context, err error) error {
	c.Logger().Errorf("analytics: report: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

// fillHourlyData returns 24 "HH:00" buckets starting at from, zero where
// sparse has no entry.
func fillHourlyData(sparse []DailyView, from time.Time) []DailyView {
	byHour := make(map[string]int, len(sparse))
	for _, v := range sparse {
		byHour[v.Date] = v.Views
	}
	out := make([]DailyView, 24)
	for i := range out {
		label := fmt.Sprintf("%02d:00", from.Add(time.Duration(i)*time.Hour).Hour())
		out[i] = DailyView{Date: label, Views: byHour[label]}
	}
	return out
}
