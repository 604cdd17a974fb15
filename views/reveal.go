package views

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/reveal"
)

// Reveal wraps child in a container that fades and slides into place the
// first time it scrolls into view. The inline style is the unit's current
// visual state; the page script reads the data attributes and finishes the
// transition in the browser.
func Reveal(u *reveal.Unit, class string, child templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<div")
		h.attr("class", strings.TrimSpace("reveal "+class))
		h.attr("data-reveal", u.State().String())
		h.attr("data-reveal-delay", strconv.FormatFloat(u.Delay().Seconds(), 'f', -1, 64))
		h.attr("data-reveal-margin", strconv.FormatFloat(u.Trigger().Margin, 'f', -1, 64))
		if a := u.Trigger().Amount; a > 0 {
			h.attr("data-reveal-amount", strconv.FormatFloat(a, 'f', -1, 64))
		}
		h.attr("style", u.Style().CSS()+";transition:"+u.Transition())
		h.raw(">")
		h.render(child)
		h.raw("</div>")
	})
}

// revealFallbackCSS shows every wrapper when scripting is off.
const revealFallbackCSS = `[data-reveal]{opacity:1!important;transform:none!important}`
