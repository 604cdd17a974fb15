// Package content holds the read-only copy rendered by the portfolio page:
// navigation links, hero, about, projects, skills, socials, and contact
// details. A Site is loaded once and never mutated; reloading produces a new
// Site that replaces the old one as a whole.
package content

import "github.com/eringen/folio/menu"

// NavLink is an in-page navigation entry.
type NavLink struct {
	Label string `koanf:"label" yaml:"label"`
	Href  string `koanf:"href" yaml:"href"`
}

// Action is a call-to-action button in the hero.
type Action struct {
	Label   string `koanf:"label" yaml:"label"`
	Href    string `koanf:"href" yaml:"href"`
	Primary bool   `koanf:"primary" yaml:"primary"`
}

// Social is an external profile link.
type Social struct {
	Label string `koanf:"label" yaml:"label"`
	Href  string `koanf:"href" yaml:"href"`
	Icon  string `koanf:"icon" yaml:"icon"` // github, linkedin, mail
}

// Hero is the full-height opening section.
type Hero struct {
	Headline string   `koanf:"headline" yaml:"headline"`
	Tagline  string   `koanf:"tagline" yaml:"tagline"`
	SceneURL string   `koanf:"scene_url" yaml:"scene_url"`
	Actions  []Action `koanf:"actions" yaml:"actions"`
}

// About is the introduction section. Body is markdown.
type About struct {
	Heading    string   `koanf:"heading" yaml:"heading"`
	Body       string   `koanf:"body" yaml:"body"`
	Highlights []string `koanf:"highlights" yaml:"highlights"`
	Caption    string   `koanf:"caption" yaml:"caption"`

	BodyHTML string `koanf:"-" yaml:"-"`
}

// Project is one card of the gallery. Description is markdown.
type Project struct {
	Slug        string   `koanf:"slug" yaml:"slug"`
	Title       string   `koanf:"title" yaml:"title"`
	Description string   `koanf:"description" yaml:"description"`
	Tags        []string `koanf:"tags" yaml:"tags"`
	URL         string   `koanf:"url" yaml:"url"`
	Order       int      `koanf:"order" yaml:"order"`

	DescriptionHTML string `koanf:"-" yaml:"-"`
}

// Contact is the closing section next to the form.
type Contact struct {
	Heading string `koanf:"heading" yaml:"heading"`
	Blurb   string `koanf:"blurb" yaml:"blurb"`
	Email   string `koanf:"email" yaml:"email"`
}

// Site is the complete content of the page.
type Site struct {
	Brand    string    `koanf:"brand" yaml:"brand"`
	Owner    string    `koanf:"owner" yaml:"owner"`
	Nav      []NavLink `koanf:"nav" yaml:"nav"`
	Hero     Hero      `koanf:"hero" yaml:"hero"`
	About    About     `koanf:"about" yaml:"about"`
	Projects []Project `koanf:"projects" yaml:"projects"`
	Skills   []string  `koanf:"skills" yaml:"skills"`
	Socials  []Social  `koanf:"socials" yaml:"socials"`
	Contact  Contact   `koanf:"contact" yaml:"contact"`
}

// MenuLinks converts Nav for the navbar state machine.
func (s *Site) MenuLinks() []menu.Link {
	links := make([]menu.Link, len(s.Nav))
	for i, n := range s.Nav {
		links[i] = menu.Link{Label: n.Label, Href: n.Href}
	}
	return links
}

// Project returns the project with slug.
func (s *Site) Project(slug string) (Project, bool) {
	for _, p := range s.Projects {
		if p.Slug == slug {
			return p, true
		}
	}
	return Project{}, false
}

// DefaultSceneURL is the 3D scene shown when none is configured.
const DefaultSceneURL = "https://prod.spline.design/VJLoxp84lCdVfdZu/scene.splinecode"

// Default returns the built-in placeholder portfolio, ready to render.
func Default() *Site {
	nav := make([]NavLink, 0, 4)
	for _, l := range menu.DefaultLinks() {
		nav = append(nav, NavLink{Label: l.Label, Href: l.Href})
	}
	s := &Site{
		Brand: "MyPortfolio",
		Owner: "Your Name",
		Nav:   nav,
		Hero: Hero{
			Headline: "Creative Developer crafting immersive web experiences",
			Tagline:  "I blend modern UI, motion, and playful 3D to build fast, delightful, and accessible products.",
			SceneURL: DefaultSceneURL,
			Actions: []Action{
				{Label: "View Projects", Href: "#projects", Primary: true},
				{Label: "Contact Me", Href: "#contact"},
			},
		},
		About: About{
			Heading: "About Me",
			Body: "I'm a front-end engineer focused on building stunning, performant interfaces. " +
				"I love motion design, WebGL, and design systems. My toolkit includes React, Tailwind, " +
				"Framer Motion, and Three/Spline for interactive 3D.",
			Highlights: []string{"5+ years experience", "UI Animation Lover", "Accessibility-first", "Remote-friendly"},
			Caption:    "A snapshot of my design explorations, concept UIs, and micro-interactions.",
		},
		Projects: []Project{
			{
				Slug:        "neon-storefront",
				Title:       "Neon Storefront",
				Description: "E-commerce UI with 3D hero and parallax product cards.",
				Tags:        []string{"React", "Spline", "Tailwind"},
			},
			{
				Slug:        "motion-dashboard",
				Title:       "Motion Dashboard",
				Description: "Analytics dashboard with fluid chart transitions and gestures.",
				Tags:        []string{"Framer Motion", "React"},
			},
			{
				Slug:        "xr-landing",
				Title:       "XR Landing",
				Description: "Marketing site with depth, glassmorphism, and scroll scenes.",
				Tags:        []string{"Three.js", "Design"},
			},
		},
		Skills: []string{"React", "TypeScript", "Tailwind", "Framer Motion", "Three.js", "Spline", "Node.js", "FastAPI"},
		Socials: []Social{
			{Label: "GitHub", Href: "https://github.com", Icon: "github"},
			{Label: "LinkedIn", Href: "https://linkedin.com", Icon: "linkedin"},
			{Label: "Email", Href: "#contact", Icon: "mail"},
		},
		Contact: Contact{
			Heading: "Let's build something together",
			Blurb:   "Reach out for collaborations, projects, or just to say hi.",
			Email:   "you@example.com",
		},
	}
	// The built-in copy is known to be valid.
	_ = s.prepare()
	return s
}
