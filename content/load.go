package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ProjectsDir is the directory, next to the content file, holding one
// markdown file per project.
const ProjectsDir = "projects"

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Load reads the content file at path and the markdown projects beside it.
// Sections missing from the file fall back to Default. A missing file is not
// an error.
func Load(path string) (*Site, error) {
	k := koanf.New(".")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("content: reading %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("content: accessing %s: %w", path, err)
	}

	s := &Site{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("content: unmarshalling %s: %w", path, err)
	}
	s.fill(Default())

	projects, err := loadProjects(filepath.Join(filepath.Dir(path), ProjectsDir))
	if err != nil {
		return nil, err
	}
	if len(projects) > 0 {
		s.Projects = projects
	}

	if err := s.prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

// fill copies every empty section from def.
func (s *Site) fill(def *Site) {
	if s.Brand == "" {
		s.Brand = def.Brand
	}
	if s.Owner == "" {
		s.Owner = def.Owner
	}
	if len(s.Nav) == 0 {
		s.Nav = def.Nav
	}
	if s.Hero.Headline == "" {
		s.Hero.Headline = def.Hero.Headline
	}
	if s.Hero.Tagline == "" {
		s.Hero.Tagline = def.Hero.Tagline
	}
	if s.Hero.SceneURL == "" {
		s.Hero.SceneURL = def.Hero.SceneURL
	}
	if len(s.Hero.Actions) == 0 {
		s.Hero.Actions = def.Hero.Actions
	}
	if s.About.Heading == "" {
		s.About.Heading = def.About.Heading
	}
	if s.About.Body == "" {
		s.About.Body = def.About.Body
	}
	if len(s.About.Highlights) == 0 {
		s.About.Highlights = def.About.Highlights
	}
	if s.About.Caption == "" {
		s.About.Caption = def.About.Caption
	}
	if len(s.Projects) == 0 {
		s.Projects = def.Projects
	}
	if len(s.Skills) == 0 {
		s.Skills = def.Skills
	}
	if len(s.Socials) == 0 {
		s.Socials = def.Socials
	}
	if s.Contact.Heading == "" {
		s.Contact.Heading = def.Contact.Heading
	}
	if s.Contact.Blurb == "" {
		s.Contact.Blurb = def.Contact.Blurb
	}
	if s.Contact.Email == "" {
		s.Contact.Email = def.Contact.Email
	}
}

// prepare assigns slugs, orders projects, renders markdown, and validates.
func (s *Site) prepare() error {
	var errs []error
	for i, n := range s.Nav {
		if !strings.HasPrefix(n.Href, "#") || len(n.Href) < 2 {
			errs = append(errs, fmt.Errorf("nav[%d] %q: href %q must be an in-page anchor", i, n.Label, n.Href))
		}
	}

	seen := make(map[string]bool, len(s.Projects))
	for i := range s.Projects {
		p := &s.Projects[i]
		if strings.TrimSpace(p.Title) == "" {
			errs = append(errs, fmt.Errorf("projects[%d]: title is required", i))
			continue
		}
		if p.Slug == "" {
			p.Slug = Slugify(p.Title)
		}
		if seen[p.Slug] {
			errs = append(errs, fmt.Errorf("projects[%d]: duplicate slug %q", i, p.Slug))
		}
		seen[p.Slug] = true
		html, err := RenderMarkdown(p.Description)
		if err != nil {
			errs = append(errs, fmt.Errorf("projects[%d]: %w", i, err))
		}
		p.DescriptionHTML = html
	}
	sort.SliceStable(s.Projects, func(i, j int) bool {
		return s.Projects[i].Order < s.Projects[j].Order
	})

	html, err := RenderMarkdown(s.About.Body)
	if err != nil {
		errs = append(errs, fmt.Errorf("about: %w", err))
	}
	s.About.BodyHTML = html

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}

// projectFront is the front matter of a project markdown file.
type projectFront struct {
	Title string   `yaml:"title" toml:"title"`
	Slug  string   `yaml:"slug" toml:"slug"`
	Tags  []string `yaml:"tags" toml:"tags"`
	URL   string   `yaml:"url" toml:"url"`
	Order int      `yaml:"order" toml:"order"`
}

// loadProjects reads every *.md file in dir. The file name, without
// extension, is the default slug. A missing directory yields no projects.
func loadProjects(dir string) ([]Project, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("content: listing %s: %w", dir, err)
	}
	sort.Strings(matches)

	projects := make([]Project, 0, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("content: reading %s: %w", path, err)
		}
		var front projectFront
		body, err := frontmatter.Parse(bytes.NewReader(raw), &front)
		if err != nil {
			return nil, fmt.Errorf("content: front matter in %s: %w", path, err)
		}
		slug := front.Slug
		if slug == "" {
			slug = Slugify(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		}
		projects = append(projects, Project{
			Slug:        slug,
			Title:       front.Title,
			Description: strings.TrimSpace(string(body)),
			Tags:        front.Tags,
			URL:         front.URL,
			Order:       front.Order,
		})
	}
	return projects, nil
}

// RenderMarkdown converts src to HTML. Raw HTML in src is dropped.
func RenderMarkdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
