package analytics

import (
	"net/url"
	"strings"
)

// rule names a client when any of its needles occurs in a lowercased string.
// Rules are tried in order, so specific needles go before generic ones.
type rule struct {
	name    string
	needles []string
}

func firstMatch(s string, rules []rule, fallback string) string {
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(s, n) {
				return r.name
			}
		}
	}
	return fallback
}

var (
	// Edge and Opera carry "chrome", and everything carries "safari".
	browserRules = []rule{
		{"Firefox", []string{"firefox"}},
		{"Opera", []string{"opera", "opr/"}},
		{"Edge", []string{"edg"}},
		{"Chrome", []string{"chrome", "crios"}},
		{"Safari", []string{"safari"}},
	}

	// Android carries "linux"; iOS carries "mac os".
	osRules = []rule{
		{"Windows", []string{"windows"}},
		{"Android", []string{"android"}},
		{"iOS", []string{"iphone", "ipad"}},
		{"macOS", []string{"macintosh", "mac os"}},
		{"Linux", []string{"linux"}},
	}

	// iPads also say "mobile".
	deviceRules = []rule{
		{"Tablet", []string{"tablet", "ipad"}},
		{"Mobile", []string{"mobile"}},
	}

	botRules = []rule{
		{"Googlebot", []string{"googlebot"}},
		{"Bingbot", []string{"bingbot"}},
		{"DuckDuckBot", []string{"duckduckbot"}},
		{"Yandex", []string{"yandex"}},
		{"Baidu", []string{"baidu"}},
		{"Yahoo Slurp", []string{"slurp"}},
		{"Facebook", []string{"facebookexternalhit"}},
		{"Twitterbot", []string{"twitterbot"}},
		{"LinkedIn", []string{"linkedinbot"}},
		{"Slack", []string{"slackbot"}},
		{"Discord", []string{"discordbot"}},
		{"Ahrefs", []string{"ahrefsbot"}},
		{"SEMrush", []string{"semrushbot"}},
		{"Majestic", []string{"mj12bot"}},
		{"Moz", []string{"dotbot"}},
		{"Generic Crawler", []string{"crawler", "crawl"}},
		{"Generic Spider", []string{"spider"}},
		{"Scraper", []string{"scrape"}},
		{"Other Bot", []string{"bot"}},
	}

	// Where portfolio visitors usually come from.
	referrerRules = []rule{
		{"Google", []string{"google."}},
		{"Bing", []string{"bing."}},
		{"DuckDuckGo", []string{"duckduckgo."}},
		{"Yahoo", []string{"yahoo."}},
		{"GitHub", []string{"github."}},
		{"LinkedIn", []string{"linkedin.", "lnkd.in"}},
		{"Dribbble", []string{"dribbble."}},
		{"Behance", []string{"behance."}},
	}
)

// ParseUserAgent classifies a browser user agent. Unrecognised values come
// back as "Other" and devices default to "Desktop".
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)
	return firstMatch(ua, browserRules, "Other"),
		firstMatch(ua, osRules, "Other"),
		firstMatch(ua, deviceRules, "Desktop")
}

// IsBot reports whether ua looks like a crawler or link previewer. Such
// clients run no script.
func IsBot(ua string) bool {
	return ExtractBotName(ua) != "Unknown"
}

// ExtractBotName names the crawler behind ua, or returns "Unknown".
func ExtractBotName(ua string) string {
	return firstMatch(strings.ToLower(ua), botRules, "Unknown")
}

// CleanReferrer reduces a referrer to a source name: a known site, the bare
// host, "Direct" when empty, or "Other" for non-web referrers.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	if name := firstMatch(strings.ToLower(ref), referrerRules, ""); name != "" {
		return name
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "Other"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
