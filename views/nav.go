package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/menu"
)

// NavID is the id of the header the page script swaps in place.
const NavID = "site-nav"

// Navbar renders the fixed header in both layouts; the stylesheet shows the
// one matching the viewport. The compact toggle is a plain link to the page
// in the flipped state, and the expanded links point back at the page
// without the menu parameter, so the menu works without scripting.
func Navbar(site *content.Site, m *menu.Menu) templ.Component {
	wide := m.View(menu.WideBreakpoint)
	compact := m.View(0)
	return component(func(h *htmlWriter) {
		state := "closed"
		if m.IsOpen() {
			state = "open"
		}
		h.raw(`<header class="navbar"`)
		h.attr("id", NavID)
		h.attr("data-menu", state)
		h.raw(`><div class="container"><div class="navbar-card"><div class="navbar-bar">`)

		h.raw(`<a class="brand" href="#"><span class="gradient-text">`)
		h.text(site.Brand)
		h.raw(`</span></a>`)

		h.raw(`<nav class="navbar-links" aria-label="Primary">`)
		for _, l := range wide.Inline {
			h.raw("<a")
			h.href(l.Href)
			h.raw(">")
			h.text(l.Label)
			h.raw("</a>")
		}
		h.raw("</nav>")

		if compact.ShowToggle {
			h.raw(`<a class="navbar-toggle" role="button" aria-label="Toggle menu" data-menu-action="toggle"`)
			h.attr("aria-controls", NavID+"-panel")
			h.attr("aria-expanded", boolString(m.IsOpen()))
			h.href(m.ToggleURL())
			h.raw(">")
			h.icon(string(compact.Icon), 22)
			h.raw("</a>")
		}
		h.raw("</div>")

		if len(compact.Expanded) > 0 {
			h.raw(`<div class="navbar-panel"`)
			h.attr("id", NavID+"-panel")
			h.raw(">")
			for _, l := range compact.Expanded {
				h.raw(`<a data-menu-action="select"`)
				h.attr("data-menu-href", l.Href)
				h.href("/" + l.Href)
				h.raw(">")
				h.text(l.Label)
				h.raw("</a>")
			}
			h.raw("</div>")
		}
		h.raw("</div></div></header>")
	})
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
