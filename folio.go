// Package folio serves a single-page personal portfolio built with Go, Echo,
// and templ: a hero with an embedded 3D scene, about, projects, skills, and a
// contact form, with sections that fade in as they scroll into view and a
// navbar that collapses into a toggle menu on narrow screens.
//
// Alongside the page it provides a small admin area (contact inbox and
// project cover images) and optional privacy-first analytics.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/analytics"
	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/menu"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the templ components the handlers render. Any entry left
// nil falls back to the built-in component from the views package, so a site
// can replace only the pages it wants to own.
type ViewFuncs struct {
	Home           func(cfg views.SiteConfig, p views.Page) templ.Component
	Navbar         func(site *content.Site, m *menu.Menu) templ.Component
	ContactPanel   func(f views.ContactForm, csrf string) templ.Component
	AdminLogin     func(cfg views.SiteConfig, showError bool, csrf string) templ.Component
	AdminDashboard func(cfg views.SiteConfig, d views.AdminData) templ.Component
	NotFound       func(cfg views.SiteConfig) templ.Component
	ServerError    func(cfg views.SiteConfig) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.Navbar == nil {
		v.Navbar = views.Navbar
	}
	if v.ContactPanel == nil {
		v.ContactPanel = views.ContactPanel
	}
	if v.AdminLogin == nil {
		v.AdminLogin = views.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = views.AdminDashboard
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// App is the central folio application. It wires together the store, page
// cache, content, contact sink, handlers, middleware, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *PageCache
	Content *content.Holder
	Sink    contact.Sink
	Views   ViewFuncs

	loginLimiter   *Limiter
	contactLimiter *Limiter
	beaconLimiter  *Limiter
	analyticsStore *analytics.Store
	analytics      *analytics.Handler
	stopCleanup    func()
	customRoutes   []func(*App)
	ready          bool
}

// New creates a folio App with the given configuration and view functions.
// Pass a zero ViewFuncs to use the built-in templates.
func New(cfg SiteConfig, vf ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	vf.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  vf,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the database, loads content, and registers middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Setup() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	a.Echo.Logger.SetLevel(logLevel(a.Config.LogLevel))

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store

	if a.Content == nil {
		site, err := content.Load(a.Config.ContentPath)
		if err != nil {
			return fmt.Errorf("folio: load content: %w", err)
		}
		a.Content = content.NewHolder(site)
	}

	if a.Sink == nil {
		sink, err := a.buildSink()
		if err != nil {
			return err
		}
		a.Sink = sink
	}

	a.Cache = NewPageCache(a.Config.PageCacheTTL)

	a.loginLimiter = NewLimiter(5, time.Minute)
	a.contactLimiter = NewLimiter(5, 10*time.Minute)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("folio: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		if err := analytics.InitSalt(analyticsStore); err != nil {
			return fmt.Errorf("folio: init analytics salt: %w", err)
		}
		a.stopCleanup = analyticsStore.StartCleanupScheduler(365, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up, unless Setup already ran, and serves until the
// server is shut down.
func (a *App) Start() error {
	if !a.ready {
		if err := a.Setup(); err != nil {
			return err
		}
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// ReloadContent publishes a new content snapshot and drops cached pages.
func (a *App) ReloadContent(site *content.Site) {
	a.Content.Replace(site)
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (site.js, site.css) come from the binary; everything
	// else under /public/ from the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)

	e.GET("/", a.handleHome)
	e.GET("/partials/nav/", a.handleNavPartial)
	e.POST("/contact/", a.handleContact)

	if a.Config.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.DELETE("/admin/messages/:id/", a.handleMessageDelete)
		e.POST("/admin/projects/:slug/image/", a.handleCoverUpload)
		e.DELETE("/admin/projects/:slug/image/", a.handleCoverDelete)
	}

	if a.analyticsStore != nil {
		a.beaconLimiter = NewLimiter(60, time.Minute)
		a.analytics = analytics.NewHandler(a.analyticsStore, a.beaconLimiter)
		requireAdmin := func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if !IsAdmin(c) {
					return c.NoContent(http.StatusUnauthorized)
				}
				return next(c)
			}
		}
		a.analytics.RegisterRoutes(e, requireAdmin)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.beaconLimiter != nil {
		a.beaconLimiter.Close()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Close()
	}
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.analyticsStore != nil {
		errs = append(errs, a.analyticsStore.Close())
	}
	return errors.Join(errs...)
}

// buildSink assembles the contact sink named by Config.Contact.Sink.
func (a *App) buildSink() (contact.Sink, error) {
	cc := a.Config.Contact
	var sinks []contact.Sink
	for _, name := range sinkNames(cc.Sink) {
		switch name {
		case SinkDiscard:
		case SinkInbox:
			sinks = append(sinks, a.Store)
		case SinkSMTP:
			sinks = append(sinks, &contact.SMTPSink{
				Host:     cc.SMTPHost,
				Port:     cc.SMTPPort,
				Username: cc.SMTPUser,
				Password: cc.SMTPPass,
				To:       cc.To,
			})
		case SinkWebhook:
			sinks = append(sinks, contact.NewWebhookSink(cc.WebhookURL))
		default:
			return nil, fmt.Errorf("folio: unknown contact sink %q", name)
		}
	}
	switch len(sinks) {
	case 0:
		return contact.Discard, nil
	case 1:
		return sinks[0], nil
	}
	return contact.Multi(sinks...), nil
}

func sinkNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func logLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
