package folio

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// csrfPlaceholder stands in for the visitor's CSRF token inside cached pages.
const csrfPlaceholder = "__folio_csrf__"

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderCached serves the page stored under key, rendering build on a miss.
// build must emit csrfPlaceholder wherever the CSRF token belongs.
func (a *App) renderCached(c echo.Context, key string, build func() (templ.Component, error)) error {
	page, err := a.Cache.Get(key, func() ([]byte, error) {
		cmp, err := build()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := cmp.Render(c.Request().Context(), &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return err
	}
	html := strings.ReplaceAll(string(page), csrfPlaceholder, CsrfToken(c))
	return c.HTML(http.StatusOK, html)
}
