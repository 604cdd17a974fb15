package folio

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/views"
)

var adminNotices = map[string]string{
	"deleted":         "Message deleted.",
	"cover-saved":     "Cover uploaded.",
	"cover-removed":   "Cover removed.",
	"no-such-project": "Unknown project.",
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.viewConfig(), false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, adminNotices[c.QueryParam("msg")])
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.viewConfig(), true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleMessageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteMessage(c.Param("id")); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, notice string) error {
	msgs, err := a.Store.ListMessages()
	if err != nil {
		return err
	}
	covers, err := a.Store.ProjectImages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(a.viewConfig(), views.AdminData{
		Messages:  msgs,
		Projects:  a.Content.Get().Projects,
		Covers:    covers,
		Notice:    notice,
		CSRF:      CsrfToken(c),
		Analytics: a.analyticsStore != nil,
	}))
}
