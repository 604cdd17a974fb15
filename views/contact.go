package views

import (
	"github.com/a-h/templ"
)

// ContactPanelID is the form container replaced after a scripted submit.
const ContactPanelID = "contact-panel"

// Contact is the closing section: heading, direct links, and the form.
func Contact(p Page) templ.Component {
	c := p.Site.Contact
	return section("contact", "section-tinted-up", func(h *htmlWriter) {
		h.render(Reveal(p.unit(0), "", component(func(h *htmlWriter) {
			h.raw(`<div class="grid-2"><div>`)
			h.raw(`<h2 class="section-title">`)
			h.text(c.Heading)
			h.raw(`</h2><p class="lead">`)
			h.text(c.Blurb)
			h.raw(`</p><div class="contact-links">`)
			if c.Email != "" {
				h.raw(`<a class="chip"`)
				h.href("mailto:" + c.Email)
				h.raw(">")
				h.icon("mail", 18)
				h.raw(" ")
				h.text(c.Email)
				h.raw("</a>")
			}
			for _, s := range p.Site.Socials {
				if s.Icon == "mail" {
					continue
				}
				h.raw(`<a class="chip"`)
				h.href(s.Href)
				h.raw(">")
				h.icon(s.Icon, 18)
				h.raw(" ")
				h.text(s.Label)
				h.raw("</a>")
			}
			h.raw("</div></div>")
			h.render(ContactPanel(p.Form, p.CSRF))
			h.raw("</div>")
		})))
	})
}

// ContactPanel is the form with its status. After a successful submission
// the fields are cleared and a confirmation is shown instead.
func ContactPanel(f ContactForm, csrf string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="contact-panel"`)
		h.attr("id", ContactPanelID)
		h.raw(`>`)
		switch {
		case f.Sent:
			h.raw(`<p class="notice notice-success" role="status">Thanks! Your message is on its way.</p>`)
		case f.Failed:
			h.raw(`<p class="notice notice-error" role="alert">Sorry, your message could not be sent. Please try again later.</p>`)
		case len(f.Errors) > 0:
			h.raw(`<p class="notice notice-error" role="alert">Please fix the highlighted fields.</p>`)
		}
		h.raw(`<form class="card contact-form" method="post" action="/contact/#contact" data-contact-form novalidate>`)
		h.raw(`<input type="hidden" name="_csrf"`)
		h.attr("value", csrf)
		h.raw(`><div class="fields">`)

		values := f.Values
		if f.Sent {
			values.Name, values.Email, values.Message = "", "", ""
		}
		field(h, "name", "Name", "text", "Your name", values.Name, f.Errors["name"])
		field(h, "email", "Email", "email", "you@example.com", values.Email, f.Errors["email"])

		h.raw(`<div class="field"><label for="contact-message">Message</label>`)
		h.raw(`<textarea id="contact-message" name="message" rows="4" placeholder="Tell me about your project" required`)
		h.boolAttr(`aria-invalid="true"`, f.Errors["message"] != "")
		h.raw(">")
		h.text(values.Message)
		h.raw("</textarea>")
		fieldError(h, f.Errors["message"])
		h.raw("</div>")

		h.raw(`<button type="submit" class="button button-primary">Send Message</button>`)
		h.raw("</div></form></div>")
	})
}

func field(h *htmlWriter, name, label, typ, placeholder, value, problem string) {
	id := "contact-" + name
	h.raw(`<div class="field"><label`)
	h.attr("for", id)
	h.raw(">")
	h.text(label)
	h.raw("</label><input")
	h.attr("id", id)
	h.attr("name", name)
	h.attr("type", typ)
	h.attr("placeholder", placeholder)
	h.attr("value", value)
	h.raw(" required")
	h.boolAttr(`aria-invalid="true"`, problem != "")
	h.raw(">")
	fieldError(h, problem)
	h.raw("</div>")
}

func fieldError(h *htmlWriter, problem string) {
	if problem == "" {
		return
	}
	h.raw(`<p class="field-error">`)
	h.text(problem)
	h.raw("</p>")
}
