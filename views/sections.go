package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
)

// Home is the complete portfolio page.
func Home(cfg SiteConfig, p Page) templ.Component {
	title := cfg.Name
	if p.Site.Owner != "" && p.Site.Owner != cfg.Name {
		title = p.Site.Owner + " · " + cfg.Name
	}
	meta := PageMeta{Title: title, Description: cfg.Description}
	if meta.Description == "" {
		meta.Description = p.Site.Hero.Tagline
	}
	return Layout(cfg, meta, true, component(func(h *htmlWriter) {
		h.render(Navbar(p.Site, p.Menu))
		h.raw("<main>")
		h.render(Hero(p))
		h.render(About(p))
		h.render(Projects(p))
		h.render(Skills(p))
		h.render(Contact(p))
		h.raw("</main>")
		h.render(Footer(p))
	}))
}

// section opens a page section with the shared inner container.
func section(id, class string, body func(h *htmlWriter)) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<section")
		h.attr("id", id)
		h.attr("class", "section "+class)
		h.raw(`><div class="container">`)
		body(h)
		h.raw("</div></section>")
	})
}

// Hero is the full-height opening with the 3D scene behind the copy. The
// scene container keeps its size whether or not the viewer loads.
func Hero(p Page) templ.Component {
	hero := p.Site.Hero
	return component(func(h *htmlWriter) {
		h.raw(`<div class="hero" id="top"><div class="hero-scene">`)
		if hero.SceneURL != "" {
			h.raw("<spline-viewer")
			h.attr("url", hero.SceneURL)
			h.raw(` loading-anim-type="none"></spline-viewer>`)
		}
		h.raw(`</div><div class="hero-fade"></div><div class="hero-content"><div class="container">`)

		h.render(Reveal(p.unit(0), "", component(func(h *htmlWriter) {
			h.raw(`<h1 class="hero-title">`)
			h.text(hero.Headline)
			h.raw("</h1>")
		})))
		h.render(Reveal(p.unit(secs(0.1)), "", component(func(h *htmlWriter) {
			h.raw(`<p class="hero-tagline">`)
			h.text(hero.Tagline)
			h.raw("</p>")
		})))
		h.render(Reveal(p.unit(secs(0.2)), "", component(func(h *htmlWriter) {
			h.raw(`<div class="hero-actions">`)
			for _, a := range hero.Actions {
				class := "button button-secondary"
				if a.Primary {
					class = "button button-primary"
				}
				h.raw("<a")
				h.attr("class", class)
				h.href(a.Href)
				h.raw(">")
				h.text(a.Label)
				if a.Primary {
					h.raw(" ")
					h.icon("arrow-right", 18)
				}
				h.raw("</a>")
			}
			h.raw("</div>")
		})))
		h.render(Reveal(p.unit(secs(0.3)), "", component(func(h *htmlWriter) {
			h.raw(`<div class="hero-socials">`)
			for _, s := range p.Site.Socials {
				h.raw(`<a class="icon-link"`)
				h.attr("aria-label", s.Label)
				h.href(s.Href)
				h.raw(">")
				h.icon(s.Icon, 20)
				h.raw("</a>")
			}
			h.raw("</div>")
		})))

		h.raw("</div></div></div>")
	})
}

// About is the introduction with highlights and a snapshot card.
func About(p Page) templ.Component {
	about := p.Site.About
	return section("about", "", func(h *htmlWriter) {
		h.render(Reveal(p.unit(0), "", component(func(h *htmlWriter) {
			h.raw(`<div class="grid-2 about"><div>`)
			h.raw(`<h2 class="section-title">`)
			h.text(about.Heading)
			h.raw(`</h2><div class="prose">`)
			// BodyHTML is rendered from markdown with raw HTML disabled.
			h.raw(about.BodyHTML)
			h.raw(`</div><div class="highlights">`)
			for _, hl := range about.Highlights {
				h.raw(`<div class="card highlight">`)
				h.text(hl)
				h.raw("</div>")
			}
			h.raw(`</div></div><div class="snapshot"><div class="snapshot-glow"></div><div class="card snapshot-card"><div class="snapshot-art"></div><p>`)
			h.text(about.Caption)
			h.raw("</p></div></div></div>")
		})))
	})
}

// Projects is the "Selected Work" gallery. Cards are staggered by 50ms.
func Projects(p Page) templ.Component {
	return section("projects", "section-tinted", func(h *htmlWriter) {
		h.render(Reveal(p.unit(0), "", component(func(h *htmlWriter) {
			h.raw(`<h2 class="section-title">Selected Work</h2>`)
		})))
		h.raw(`<div class="grid-3 projects">`)
		for i, proj := range p.Site.Projects {
			cover, hasCover := p.Covers[proj.Slug]
			h.render(Reveal(p.unit(secs(0.05*float64(i))), "", projectCard(proj, cover, hasCover)))
		}
		h.raw("</div>")
	})
}

func projectCard(proj content.Project, cover Image, hasCover bool) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<article class="card project"`)
		h.attr("id", "project-"+proj.Slug)
		h.raw(`><div class="project-glow"></div><div class="project-body">`)
		if hasCover {
			h.raw(`<img class="project-cover" loading="lazy"`)
			h.attr("src", cover.URL())
			h.attr("alt", proj.Title)
			h.attr("width", itoa(cover.Width))
			h.attr("height", itoa(cover.Height))
			h.raw(">")
		} else {
			h.raw(`<div class="project-cover project-cover-placeholder"></div>`)
		}
		h.raw(`<h3 class="project-title">`)
		if proj.URL != "" {
			h.raw("<a")
			h.href(proj.URL)
			h.raw(">")
			h.text(proj.Title)
			h.raw("</a>")
		} else {
			h.text(proj.Title)
		}
		h.raw(`</h3><div class="project-description">`)
		h.raw(proj.DescriptionHTML)
		h.raw(`</div><div class="tags">`)
		for _, t := range proj.Tags {
			h.raw(`<span class="tag">`)
			h.text(t)
			h.raw("</span>")
		}
		h.raw("</div></div></article>")
	})
}

// Skills lists skill pills.
func Skills(p Page) templ.Component {
	return section("skills", "", func(h *htmlWriter) {
		h.render(Reveal(p.unit(0), "", component(func(h *htmlWriter) {
			h.raw(`<h2 class="section-title">Skills</h2>`)
		})))
		h.render(Reveal(p.unit(secs(0.1)), "", component(func(h *htmlWriter) {
			h.raw(`<div class="skills">`)
			for _, s := range p.Site.Skills {
				h.raw(`<span class="skill">`)
				h.text(s)
				h.raw("</span>")
			}
			h.raw("</div>")
		})))
	})
}

// Footer carries the copyright line.
func Footer(p Page) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<footer class="footer"><div class="container"><div class="card footer-card">&copy; `)
		h.text(itoa(p.Year))
		h.raw(" ")
		h.text(p.Owner)
		h.raw(". All rights reserved.</div></div></footer>")
	})
}
