package analytics

import (
	"testing"
	"time"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		ua                  string
		browser, os, device string
	}{
		{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			"Chrome", "Windows", "Desktop",
		},
		{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0",
			"Edge", "Windows", "Desktop",
		},
		{
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			"Safari", "iOS", "Mobile",
		},
		{
			"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			"Safari", "iOS", "Tablet",
		},
		{
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36",
			"Chrome", "Android", "Mobile",
		},
		{
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			"Firefox", "Linux", "Desktop",
		},
		{"curl/8.4.0", "Other", "Other", "Desktop"},
	}
	for _, tt := range tests {
		browser, os, device := ParseUserAgent(tt.ua)
		if browser != tt.browser || os != tt.os || device != tt.device {
			t.Errorf("ParseUserAgent(%q) = %q, %q, %q; want %q, %q, %q",
				tt.ua, browser, os, device, tt.browser, tt.os, tt.device)
		}
	}
}

func TestIsBot(t *testing.T) {
	bots := []string{
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"facebookexternalhit/1.1",
		"Mozilla/5.0 (compatible; AhrefsBot/7.0)",
		"SomeCrawler/1.0",
	}
	for _, ua := range bots {
		if !IsBot(ua) {
			t.Errorf("IsBot(%q) = false, want true", ua)
		}
	}
	if IsBot("Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0") {
		t.Error("Firefox should not be detected as a bot")
	}
}

func TestExtractBotName(t *testing.T) {
	tests := map[string]string{
		"Mozilla/5.0 (compatible; Googlebot/2.1)": "Googlebot",
		"Mozilla/5.0 (compatible; bingbot/2.0)":   "Bingbot",
		"Twitterbot/1.0":                          "Twitterbot",
		"Slackbot-LinkExpanding 1.0":              "Slack",
		"ExampleBot/0.1":                          "Other Bot",
		"Mozilla/5.0":                             "Unknown",
	}
	for ua, want := range tests {
		if got := ExtractBotName(ua); got != want {
			t.Errorf("ExtractBotName(%q) = %q, want %q", ua, got, want)
		}
	}
}

func TestCleanReferrer(t *testing.T) {
	tests := map[string]string{
		"":                                  "Direct",
		"https://www.google.com/search?q=x": "Google",
		"https://github.com/eringen":        "GitHub",
		"https://www.example.org/post/1":    "example.org",
		"http://news.ycombinator.com/item":  "news.ycombinator.com",
		"android-app://com.slack":           "Other",
		"https://www.linkedin.com/in/jane":  "LinkedIn",
	}
	for ref, want := range tests {
		if got := CleanReferrer(ref); got != want {
			t.Errorf("CleanReferrer(%q) = %q, want %q", ref, got, want)
		}
	}
}

func TestIsSectionPath(t *testing.T) {
	tests := map[string]bool{
		"/#about":    true,
		"/#projects": true,
		"/#":         false,
		"/":          false,
		"/about":     false,
	}
	for path, want := range tests {
		if got := IsSectionPath(path); got != want {
			t.Errorf("IsSectionPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	p := parsePeriod("today", now)
	if p.name != "today" || p.days != 1 || !p.hourly || p.monthly {
		t.Errorf("today = %+v", p)
	}
	if want := time.Date(2026, 3, 13, 16, 0, 0, 0, time.UTC); !p.from.Equal(want) || !p.to.Equal(now) {
		t.Errorf("today range = %v..%v, want %v..%v", p.from, p.to, want, now)
	}

	p = parsePeriod("year", now)
	if p.name != "year" || p.days != 365 || p.hourly || !p.monthly {
		t.Errorf("year = %+v", p)
	}

	p = parsePeriod("bogus", now)
	if p.name != "week" || p.days != 7 {
		t.Errorf("fallback = %q %d, want week 7", p.name, p.days)
	}
	if want := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC); !p.from.Equal(want) {
		t.Errorf("week from = %v, want %v", p.from, want)
	}
	if want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC); !p.to.Equal(want) {
		t.Errorf("week to = %v, want %v", p.to, want)
	}
}
