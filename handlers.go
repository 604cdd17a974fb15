package folio

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/analytics"
	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/menu"
	"github.com/eringen/folio/reveal"
	"github.com/eringen/folio/views"
)

func isHXRequest(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// viewConfig is the subset of SiteConfig the templates see.
func (a *App) viewConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:             a.Config.Name,
		URL:              a.Config.URL,
		Description:      a.Config.Description,
		Author:           a.Config.Author,
		AnalyticsEnabled: a.analyticsStore != nil,
		AssetVersion:     AssetVersion,
	}
}

// page assembles the home page for this request.
func (a *App) page(c echo.Context, form views.ContactForm) (views.Page, error) {
	site := a.Content.Get()
	if a.Config.SceneURL != "" && a.Config.SceneURL != site.Hero.SceneURL {
		s := *site
		s.Hero.SceneURL = a.Config.SceneURL
		site = &s
	}
	covers, err := a.Store.ProjectImages()
	if err != nil {
		return views.Page{}, err
	}
	owner := a.Config.Author
	if owner == "" {
		owner = site.Owner
	}
	p := views.Page{
		Site:     site,
		Menu:     menu.FromQuery(site.MenuLinks(), c.QueryParams()),
		Observer: reveal.ClientSide{},
		Covers:   covers,
		Form:     form,
		CSRF:     CsrfToken(c),
		Year:     time.Now().Year(),
		Owner:    owner,
	}
	// Crawlers run no script, so nothing would ever reveal.
	if analytics.IsBot(c.Request().UserAgent()) {
		p.Observer = nil
	}
	return p, nil
}

func (a *App) handleHome(c echo.Context) error {
	key := "home"
	if c.QueryParam(menu.QueryParam) == "open" {
		key += "|menu"
	}
	if analytics.IsBot(c.Request().UserAgent()) {
		key += "|static"
	}
	return a.renderCached(c, key, func() (templ.Component, error) {
		p, err := a.page(c, views.ContactForm{})
		if err != nil {
			return nil, err
		}
		p.CSRF = csrfPlaceholder
		return a.Views.Home(a.viewConfig(), p), nil
	})
}

// handleNavPartial applies one menu action to the state carried in the
// query and returns the resulting header. Without HX-Request it redirects to
// the page in that state.
//
//	?menu=open&action=toggle
//	?menu=open&action=select&href=%23about
//	?menu=open&action=resize&width=1024
func (a *App) handleNavPartial(c echo.Context) error {
	site := a.Content.Get()
	m := menu.FromQuery(site.MenuLinks(), c.QueryParams())
	switch c.QueryParam("action") {
	case "":
	case "toggle":
		m.Toggle()
	case "select":
		m.Select(c.QueryParam("href"))
	case "resize":
		width, err := strconv.Atoi(c.QueryParam("width"))
		if err != nil || width < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid width")
		}
		m.Resize(width)
	case "close":
		m.Close()
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown menu action")
	}
	if !isHXRequest(c) {
		target := "/"
		if m.IsOpen() {
			target = "/?" + menu.QueryParam + "=open"
		}
		return c.Redirect(http.StatusSeeOther, target)
	}
	return Render(c, a.Views.Navbar(site, m))
}

// handleContact validates the form and hands the message to the sink. A
// scripted submit gets the form panel back; a plain form post gets the full
// page with the panel in its new state.
func (a *App) handleContact(c echo.Context) error {
	ip := c.RealIP()
	form := contact.Form{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Message: c.FormValue("message"),
	}
	state := views.ContactForm{Values: form.Normalize()}
	status := http.StatusOK

	msg, err := contact.NewMessage(form, ip, time.Now())
	switch ve, invalid := contact.IsInvalid(err); {
	case invalid:
		state.Errors = ve.Fields
		status = http.StatusUnprocessableEntity
	case err != nil:
		return err
	case !a.contactLimiter.Allow(ip):
		return c.String(http.StatusTooManyRequests, "Too many messages. Try again later.")
	default:
		if err := a.Sink.Deliver(c.Request().Context(), msg); err != nil {
			c.Logger().Errorf("contact delivery failed: %v", err)
			state.Failed = true
			status = http.StatusBadGateway
		} else {
			c.Logger().Infof("contact message %s accepted", msg.ID)
			state.Sent = true
		}
	}

	if isHXRequest(c) {
		return RenderStatus(c, status, a.Views.ContactPanel(state, CsrfToken(c)))
	}
	p, err := a.page(c, state)
	if err != nil {
		return err
	}
	// The visitor already scrolled to the form; keep the page visible.
	p.Observer = nil
	return RenderStatus(c, status, a.Views.Home(a.viewConfig(), p))
}

// handleFavicon serves the site's own favicon.svg, or the built-in one.
func (a *App) handleFavicon(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "favicon.svg")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	b, err := EmbeddedAssets.ReadFile("embedded/favicon.svg")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", b)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.viewConfig()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.viewConfig()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
