package views

import (
	"math"
	"time"

	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/menu"
	"github.com/eringen/folio/reveal"
)

// SiteConfig holds site-wide settings every page needs.
type SiteConfig struct {
	Name             string
	URL              string
	Description      string
	Author           string
	AnalyticsEnabled bool
	AssetVersion     string // appended to embedded asset URLs for cache busting
}

// Image is an uploaded project cover, stored under /public/uploads/.
type Image struct {
	ProjectSlug  string
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// URL is where the image is served.
func (i Image) URL() string { return "/public/uploads/" + i.Filename }

// ContactForm is the state of the contact form after a submission attempt.
type ContactForm struct {
	Values contact.Form
	Errors map[string]string
	Sent   bool
	Failed bool // accepted but could not be delivered
}

// Page is everything the home page renders from.
type Page struct {
	Site *content.Site
	Menu *menu.Menu

	// Observer drives the reveal wrappers. reveal.ClientSide leaves them
	// hidden for the page script; nil renders every section visible.
	Observer reveal.VisibilityObserver

	Covers map[string]Image
	Form   ContactForm
	CSRF   string
	Year   int
	Owner  string
}

// unit mounts a reveal wrapper for this page.
func (p Page) unit(delay time.Duration) *reveal.Unit {
	u := reveal.New(reveal.WithDelay(delay))
	u.Mount(p.Observer, reveal.Rect{})
	return u
}

// secs converts seconds, the unit the page copy is written in.
func secs(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}
