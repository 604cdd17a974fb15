package views

import (
	"net/url"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/content"
)

// AdminData is what the inbox dashboard shows.
type AdminData struct {
	Messages  []contact.Message
	Projects  []content.Project
	Covers    map[string]Image
	Notice    string
	CSRF      string
	Analytics bool
}

// AdminLogin is the password form.
func AdminLogin(cfg SiteConfig, showError bool, csrf string) templ.Component {
	return Layout(cfg, PageMeta{Title: "Admin · " + cfg.Name}, false, component(func(h *htmlWriter) {
		h.raw(`<main class="admin"><div class="container narrow"><h1 class="section-title">Admin</h1>`)
		if showError {
			h.raw(`<p class="notice notice-error" role="alert">Wrong password.</p>`)
		}
		h.raw(`<form class="card admin-form" method="post" action="/admin/login/">`)
		csrfInput(h, csrf)
		h.raw(`<div class="field"><label for="admin-password">Password</label>`)
		h.raw(`<input id="admin-password" name="password" type="password" autocomplete="current-password" required autofocus></div>`)
		h.raw(`<button type="submit" class="button button-primary">Sign in</button></form></div></main>`)
	}))
}

// AdminDashboard lists inbox messages and project covers.
func AdminDashboard(cfg SiteConfig, d AdminData) templ.Component {
	return Layout(cfg, PageMeta{Title: "Inbox · " + cfg.Name}, false, component(func(h *htmlWriter) {
		h.raw(`<main class="admin"><div class="container">`)
		h.raw(`<div class="admin-bar"><h1 class="section-title">Inbox</h1><div class="admin-actions">`)
		if d.Analytics {
			h.raw(`<a class="chip" href="/admin/analytics/api/stats?period=week">Analytics (JSON)</a>`)
		}
		h.raw(`<a class="chip" href="/">View site</a>`)
		h.raw(`<form method="post" action="/admin/logout/">`)
		csrfInput(h, d.CSRF)
		h.raw(`<button type="submit" class="chip">Sign out</button></form></div></div>`)

		if d.Notice != "" {
			h.raw(`<p class="notice notice-success" role="status">`)
			h.text(d.Notice)
			h.raw("</p>")
		}

		h.raw(`<section class="admin-section"><h2>Messages (`)
		h.text(itoa(len(d.Messages)))
		h.raw(")</h2>")
		if len(d.Messages) == 0 {
			h.raw(`<p class="muted">No messages yet.</p>`)
		}
		for _, m := range d.Messages {
			h.raw(`<article class="card message"`)
			h.attr("id", "message-"+m.ID)
			h.raw(`><header><strong>`)
			h.text(m.Name)
			h.raw("</strong> &lt;<a")
			h.href("mailto:" + m.Email)
			h.raw(">")
			h.text(m.Email)
			h.raw("</a>&gt; <time")
			h.attr("datetime", m.ReceivedAt.Format(time.RFC3339))
			h.raw(">")
			h.text(m.ReceivedAt.Format("2006-01-02 15:04"))
			h.raw(`</time></header><p class="message-body">`)
			h.text(m.Body)
			h.raw("</p>")
			deleteForm(h, "/admin/messages/"+url.PathEscape(m.ID)+"/", d.CSRF, "Delete")
			h.raw("</article>")
		}
		h.raw("</section>")

		h.raw(`<section class="admin-section"><h2>Project covers</h2><div class="grid-3">`)
		for _, p := range d.Projects {
			action := "/admin/projects/" + url.PathEscape(p.Slug) + "/image/"
			h.raw(`<div class="card cover">`)
			h.raw("<h3>")
			h.text(p.Title)
			h.raw("</h3>")
			if img, ok := d.Covers[p.Slug]; ok {
				h.raw(`<img class="project-cover"`)
				h.attr("src", img.URL())
				h.attr("alt", p.Title)
				h.raw(`><p class="muted">`)
				h.text(img.OriginalName + " · " + itoa(img.Width) + "×" + itoa(img.Height))
				h.raw("</p>")
				deleteForm(h, action, d.CSRF, "Remove cover")
			}
			h.raw(`<form method="post" enctype="multipart/form-data"`)
			h.attr("action", action)
			h.raw(">")
			csrfInput(h, d.CSRF)
			h.raw(`<input type="file" name="image" accept="image/jpeg,image/png,image/gif" required>`)
			h.raw(`<button type="submit" class="chip">Upload</button></form></div>`)
		}
		h.raw("</div></section></div></main>")
	}))
}

func csrfInput(h *htmlWriter, token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(">")
}

// deleteForm posts with a method override, so deletes work without scripting.
func deleteForm(h *htmlWriter, action, csrf, label string) {
	h.raw(`<form method="post"`)
	h.attr("action", action)
	h.raw(`><input type="hidden" name="_method" value="DELETE">`)
	csrfInput(h, csrf)
	h.raw(`<button type="submit" class="chip chip-danger">`)
	h.text(label)
	h.raw("</button></form>")
}

// NotFound is the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return errorPage(cfg, "Page not found", "The page you are looking for does not exist.")
}

// ServerError is the 5xx page.
func ServerError(cfg SiteConfig) templ.Component {
	return errorPage(cfg, "Something went wrong", "Please try again in a moment.")
}

func errorPage(cfg SiteConfig, title, detail string) templ.Component {
	return Layout(cfg, PageMeta{Title: title + " · " + cfg.Name}, false, component(func(h *htmlWriter) {
		h.raw(`<main class="error-page"><div class="container narrow"><h1 class="section-title">`)
		h.text(title)
		h.raw(`</h1><p class="lead">`)
		h.text(detail)
		h.raw(`</p><a class="button button-primary" href="/">Back home</a></div></main>`)
	}))
}
