// Package menu holds the open/closed state of the responsive navigation bar.
//
// On wide viewports every link renders inline and the state is invisible.
// On narrow viewports a toggle control flips the state and, while open, an
// expanded list of the same links renders below the bar. Choosing a link
// closes the list.
package menu

import (
	"net/url"
	"strings"
)

// WideBreakpoint is the first viewport width, in CSS pixels, that uses the
// inline layout.
const WideBreakpoint = 768

// QueryParam carries the state in server-rendered URLs.
const QueryParam = "menu"

// Layout is the arrangement chosen for a viewport width.
type Layout int

const (
	Compact Layout = iota
	Wide
)

func (l Layout) String() string {
	if l == Wide {
		return "wide"
	}
	return "compact"
}

// LayoutFor returns the layout used at width.
func LayoutFor(width int) Layout {
	if width >= WideBreakpoint {
		return Wide
	}
	return Compact
}

// Icon names the glyph shown on the toggle control.
type Icon string

const (
	IconOpen  Icon = "menu" // shown while closed; activating opens
	IconClose Icon = "x"    // shown while open; activating closes
)

// Link is a named in-page anchor.
type Link struct {
	Label string
	Href  string
}

// Fragment returns the anchor id without the leading '#'.
func (l Link) Fragment() string {
	return strings.TrimPrefix(l.Href, "#")
}

// DefaultLinks are the sections of the portfolio page.
func DefaultLinks() []Link {
	return []Link{
		{Label: "About", Href: "#about"},
		{Label: "Projects", Href: "#projects"},
		{Label: "Skills", Href: "#skills"},
		{Label: "Contact", Href: "#contact"},
	}
}

// Menu is the navigation state owned by one navbar instance. It is not safe
// for concurrent use; each request builds its own.
type Menu struct {
	links []Link
	open  bool
}

// New returns a closed menu over links. The slice is copied.
func New(links []Link) *Menu {
	return &Menu{links: append([]Link(nil), links...)}
}

// FromQuery restores a menu from a request query, as produced by ToggleURL.
func FromQuery(links []Link, q url.Values) *Menu {
	m := New(links)
	m.open = q.Get(QueryParam) == "open"
	return m
}

// Links returns a copy of the configured links.
func (m *Menu) Links() []Link {
	return append([]Link(nil), m.links...)
}

// IsOpen reports whether the expanded panel is open.
func (m *Menu) IsOpen() bool { return m.open }

// Toggle flips the state.
func (m *Menu) Toggle() { m.open = !m.open }

// Close closes the panel.
func (m *Menu) Close() { m.open = false }

// Select closes the panel and returns the link whose href matches. ok is
// false when href is not one of the configured links; the panel is closed
// either way.
func (m *Menu) Select(href string) (Link, bool) {
	m.open = false
	for _, l := range m.links {
		if l.Href == href {
			return l, true
		}
	}
	return Link{}, false
}

// Resize closes the panel when width switches to the wide layout, where the
// compact panel does not apply.
func (m *Menu) Resize(width int) {
	if LayoutFor(width) == Wide {
		m.open = false
	}
}

// Icon returns the glyph the toggle control shows for the current state.
func (m *Menu) Icon() Icon {
	if m.open {
		return IconClose
	}
	return IconOpen
}

// ToggleURL returns the URL the toggle control points at: the same page in
// the flipped state.
func (m *Menu) ToggleURL() string {
	if m.open {
		return "/"
	}
	return "/?" + QueryParam + "=open"
}

// View is what a navbar shows at one viewport width.
type View struct {
	Layout     Layout
	ShowToggle bool
	Icon       Icon
	Inline     []Link // always-visible links in the bar
	Expanded   []Link // vertical list below the bar; empty when closed
}

// View resolves the visible parts of the navbar at width.
func (m *Menu) View(width int) View {
	if LayoutFor(width) == Wide {
		return View{Layout: Wide, Inline: m.Links()}
	}
	v := View{Layout: Compact, ShowToggle: true, Icon: m.Icon()}
	if m.open {
		v.Expanded = m.Links()
	}
	return v
}
