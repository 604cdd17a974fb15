package folio

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/content"
)

// EnvPrefix prefixes environment overrides. A double underscore descends
// into a section: FOLIO_CONTACT__SINK sets contact.sink.
const EnvPrefix = "FOLIO_"

// Contact sink names accepted in ContactConfig.Sink.
const (
	SinkDiscard = "discard"
	SinkInbox   = "inbox"
	SinkSMTP    = "smtp"
	SinkWebhook = "webhook"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `koanf:"name" yaml:"name,omitempty"`               // Site name (default "Portfolio")
	URL         string `koanf:"url" yaml:"url,omitempty"`                 // Public URL (default "http://localhost:3000")
	Description string `koanf:"description" yaml:"description,omitempty"` // Meta description
	Author      string `koanf:"author" yaml:"author,omitempty"`           // Footer owner; falls back to the content owner

	Addr         string `koanf:"addr" yaml:"addr,omitempty"`                   // Listen address (default ":3000")
	DatabasePath string `koanf:"database_path" yaml:"database_path,omitempty"` // SQLite path (default "data/folio.db")
	ContentPath  string `koanf:"content_path" yaml:"content_path,omitempty"`   // Content YAML (default "content/content.yml")
	StaticDir    string `koanf:"static_dir" yaml:"static_dir,omitempty"`       // User assets served under /public (default "public")
	SceneURL     string `koanf:"scene_url" yaml:"scene_url,omitempty"`         // Overrides the hero scene from content

	AnalyticsEnabled      bool   `koanf:"analytics_enabled" yaml:"analytics_enabled,omitempty"`
	AnalyticsDatabasePath string `koanf:"analytics_database_path" yaml:"analytics_database_path,omitempty"` // default "data/analytics.db"

	AdminPassword string `koanf:"admin_password" yaml:"admin_password,omitempty"` // Empty disables /admin
	SessionSecret string `koanf:"session_secret" yaml:"session_secret,omitempty"` // Required with AdminPassword
	CookieSecure  bool   `koanf:"cookie_secure" yaml:"cookie_secure,omitempty"`   // Set true for HTTPS

	PageCacheTTL time.Duration `koanf:"page_cache_ttl" yaml:"page_cache_ttl,omitempty"` // Rendered page TTL (default 5m, negative disables)
	LogLevel     string        `koanf:"log_level" yaml:"log_level,omitempty"`           // debug, info, warn, error (default info)

	Contact ContactConfig `koanf:"contact" yaml:"contact,omitempty"`
}

// ContactConfig selects where contact form messages go.
type ContactConfig struct {
	Sink       string `koanf:"sink" yaml:"sink,omitempty"` // discard (default), inbox, smtp, webhook; comma separated for several
	SMTPHost   string `koanf:"smtp_host" yaml:"smtp_host,omitempty"`
	SMTPPort   string `koanf:"smtp_port" yaml:"smtp_port,omitempty"`
	SMTPUser   string `koanf:"smtp_user" yaml:"smtp_user,omitempty"`
	SMTPPass   string `koanf:"smtp_pass" yaml:"smtp_pass,omitempty"`
	To         string `koanf:"to" yaml:"to,omitempty"`
	WebhookURL string `koanf:"webhook_url" yaml:"webhook_url,omitempty"`
}

// LoadConfig reads configuration from the YAML file at path, if present,
// then overlays FOLIO_* environment variables. Defaults fill what is left.
func LoadConfig(path string) (SiteConfig, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return SiteConfig{}, fmt.Errorf("folio: reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return SiteConfig{}, fmt.Errorf("folio: accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("folio: loading env overrides: %w", err)
	}

	var cfg SiteConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("folio: unmarshalling config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// envKey maps FOLIO_CONTACT__SMTP_HOST to contact.smtp_host.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration as YAML. Zero values are left out so the
// defaults keep applying.
func (c SiteConfig) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("folio: marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("folio: writing config to %s: %w", path, err)
	}
	return nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.ContentPath == "" {
		c.ContentPath = "content/content.yml"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.PageCacheTTL == 0 {
		c.PageCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Contact.Sink == "" {
		c.Contact.Sink = SinkDiscard
	}
}

// AdminEnabled reports whether the admin inbox is served.
func (c SiteConfig) AdminEnabled() bool { return c.AdminPassword != "" }

// Validate reports every configuration problem at once.
func (c SiteConfig) Validate() error {
	var errs []error
	if c.AdminPassword != "" && c.SessionSecret == "" {
		errs = append(errs, errors.New("session_secret is required when admin_password is set"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "off", "":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	for _, name := range sinkNames(c.Contact.Sink) {
		switch name {
		case SinkDiscard:
		case SinkInbox:
		case SinkSMTP:
			if c.Contact.SMTPHost == "" || c.Contact.To == "" {
				errs = append(errs, errors.New("contact.smtp_host and contact.to are required for the smtp sink"))
			}
		case SinkWebhook:
			if c.Contact.WebhookURL == "" {
				errs = append(errs, errors.New("contact.webhook_url is required for the webhook sink"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown contact sink %q", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("folio: invalid config: %w", err)
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithContent serves site instead of loading Config.ContentPath.
func WithContent(site *content.Site) Option {
	return func(a *App) {
		a.Content = content.NewHolder(site)
	}
}

// WithSink replaces the contact sink built from Config.Contact.
func WithSink(s contact.Sink) Option {
	return func(a *App) {
		a.Sink = s
	}
}
