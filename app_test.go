package folio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

const (
	browserUA = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	botUA     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

type recordingSink struct {
	mu   sync.Mutex
	msgs []contact.Message
	err  error
}

func (r *recordingSink) Deliver(_ context.Context, m contact.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, m)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	return newTestAppWithViews(t, cfg, ViewFuncs{}, opts...)
}

func newTestAppWithViews(t *testing.T, cfg SiteConfig, vf ViewFuncs, opts ...Option) *App {
	t.Helper()
	dir := t.TempDir()
	cfg.DatabasePath = filepath.Join(dir, "folio.db")
	cfg.AnalyticsDatabasePath = filepath.Join(dir, "analytics.db")
	cfg.StaticDir = filepath.Join(dir, "public")
	cfg.LogLevel = "off"
	a := New(cfg, vf, append([]Option{WithContent(content.Default())}, opts...)...)
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// client carries cookies between requests like a browser would.
type client struct {
	t       *testing.T
	app     *App
	ua      string
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, a *App) *client {
	return &client{t: t, app: a, ua: browserUA, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	req.Header.Set("User-Agent", c.ua)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return c.do(req)
}

func (c *client) post(target string, form url.Values, header ...string) *httptest.ResponseRecorder {
	if tok, ok := c.cookies["_csrf"]; ok && form.Get("_csrf") == "" {
		form.Set("_csrf", tok.Value)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return c.do(req)
}

// upload posts data as the multipart file field "image".
func (c *client) upload(target, filename string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		c.t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		c.t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		c.t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if tok, ok := c.cookies["_csrf"]; ok {
		req.Header.Set("X-CSRF-Token", tok.Value)
	}
	return c.do(req)
}

func adminConfig() SiteConfig {
	return SiteConfig{AdminPassword: "hunter2", SessionSecret: "test-secret"}
}

func loginAdmin(t *testing.T, a *App) *client {
	t.Helper()
	admin := newClient(t, a)
	admin.get("/admin/")
	if rec := admin.post("/admin/login/", url.Values{"password": {"hunter2"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login: status = %d, want 303", rec.Code)
	}
	return admin
}

func validContact() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"message": {"I have a project for you."},
	}
}

func TestHomeRendersHiddenRevealUnits(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	rec := newClient(t, a).get("/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`data-reveal="hidden"`,
		`data-reveal-delay="0.1"`,
		`data-reveal-margin="-100"`,
		`opacity:0`,
		`id="about"`, `id="projects"`, `id="skills"`, `id="contact"`,
		`<spline-viewer`,
		`data-menu="closed"`,
		`<meta name="description"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %s", want)
		}
	}
	if strings.Contains(body, `data-reveal="revealed"`) {
		t.Error("a visitor with scripting should not get pre-revealed units")
	}
}

func TestHomeRevealedForBots(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	c := newClient(t, a)
	c.ua = botUA
	body := c.get("/").Body.String()

	if strings.Contains(body, `data-reveal="hidden"`) {
		t.Error("crawlers must get every unit visible")
	}
	if !strings.Contains(body, `data-reveal="revealed"`) {
		t.Error("revealed units missing")
	}
}

func TestHomeCachedPerVariantWithFreshCSRF(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	first := newClient(t, a)
	body1 := first.get("/").Body.String()
	second := newClient(t, a)
	body2 := second.get("/").Body.String()

	if a.Cache.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", a.Cache.Len())
	}
	if strings.Contains(body1, csrfPlaceholder) {
		t.Error("placeholder leaked into the page")
	}
	tok1, tok2 := first.cookies["_csrf"].Value, second.cookies["_csrf"].Value
	if tok1 == tok2 {
		t.Fatal("visitors share a CSRF token")
	}
	if !strings.Contains(body1, tok1) || !strings.Contains(body2, tok2) {
		t.Error("page does not carry the visitor's own CSRF token")
	}

	newClient(t, a).get("/?menu=open")
	if a.Cache.Len() != 2 {
		t.Errorf("cache entries = %d, want 2 after the open-menu variant", a.Cache.Len())
	}
}

func TestReloadContentInvalidatesCache(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	c := newClient(t, a)
	c.get("/")

	site := content.Default()
	site.Hero.Headline = "Brand new headline"
	a.ReloadContent(site)

	if !strings.Contains(c.get("/").Body.String(), "Brand new headline") {
		t.Error("reloaded content not served")
	}
}

func TestHomeMenuOpenFromQuery(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	body := newClient(t, a).get("/?menu=open").Body.String()

	if !strings.Contains(body, `data-menu="open"`) {
		t.Error("menu should render open")
	}
	if !strings.Contains(body, `id="site-nav-panel"`) {
		t.Error("expanded panel missing")
	}
	if !strings.Contains(body, `href="/#about"`) {
		t.Error("panel links should point at the page sections")
	}
}

func TestNavPartial(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	c := newClient(t, a)
	hx := []string{"HX-Request", "true"}

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/partials/nav/?action=toggle", http.StatusOK, `data-menu="open"`},
		{"/partials/nav/?menu=open&action=toggle", http.StatusOK, `data-menu="closed"`},
		{"/partials/nav/?menu=open&action=select&href=%23about", http.StatusOK, `data-menu="closed"`},
		{"/partials/nav/?menu=open&action=select&href=%23nowhere", http.StatusOK, `data-menu="closed"`},
		{"/partials/nav/?menu=open&action=resize&width=500", http.StatusOK, `data-menu="open"`},
		{"/partials/nav/?menu=open&action=resize&width=1024", http.StatusOK, `data-menu="closed"`},
		{"/partials/nav/?menu=open&action=close", http.StatusOK, `data-menu="closed"`},
		{"/partials/nav/?action=resize&width=wide", http.StatusBadRequest, ""},
		{"/partials/nav/?action=explode", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		rec := c.get(tt.target, hx...)
		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.target, rec.Code, tt.status)
			continue
		}
		if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: body missing %s", tt.target, tt.want)
		}
	}
}

func TestNavPartialRedirectsWithoutScript(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	c := newClient(t, a)

	rec := c.get("/partials/nav/?action=toggle")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/?menu=open" {
		t.Errorf("toggle: %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = c.get("/partials/nav/?menu=open&action=toggle")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("close: %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestContactDelivers(t *testing.T) {
	sink := &recordingSink{}
	a := newTestApp(t, SiteConfig{}, WithSink(sink))
	c := newClient(t, a)
	c.get("/")

	rec := c.post("/contact/", validContact(), "HX-Request", "true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Thanks!") {
		t.Error("confirmation missing")
	}
	if strings.Contains(rec.Body.String(), "<html") {
		t.Error("scripted submit should get only the panel")
	}
	if sink.count() != 1 {
		t.Fatalf("delivered = %d, want 1", sink.count())
	}
	m := sink.msgs[0]
	if m.Name != "Ada Lovelace" || m.Email != "ada@example.com" || m.ID == "" {
		t.Errorf("message = %+v", m)
	}
}

func TestContactWithoutScriptGetsFullPage(t *testing.T) {
	sink := &recordingSink{}
	a := newTestApp(t, SiteConfig{}, WithSink(sink))
	c := newClient(t, a)
	c.get("/")

	rec := c.post("/contact/", validContact())
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "<html") || !strings.Contains(body, "Thanks!") {
		t.Fatalf("status = %d, full page with confirmation expected", rec.Code)
	}
	if strings.Contains(body, `data-reveal="hidden"`) {
		t.Error("the page after a form post should render fully visible")
	}
}

func TestContactValidation(t *testing.T) {
	sink := &recordingSink{}
	a := newTestApp(t, SiteConfig{}, WithSink(sink))
	c := newClient(t, a)
	c.get("/")

	form := url.Values{"name": {"  "}, "email": {"not-an-email"}, "message": {"hi"}}
	rec := c.post("/contact/", form, "HX-Request", "true")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `aria-invalid="true"`) {
		t.Error("invalid fields not marked")
	}
	if !strings.Contains(rec.Body.String(), `value="not-an-email"`) {
		t.Error("submitted values should be kept")
	}
	if sink.count() != 0 {
		t.Error("invalid message was delivered")
	}
}

func TestContactRequiresCSRF(t *testing.T) {
	sink := &recordingSink{}
	a := newTestApp(t, SiteConfig{}, WithSink(sink))
	c := newClient(t, a)

	rec := c.post("/contact/", validContact(), "HX-Request", "true")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 without a token", rec.Code)
	}
	if sink.count() != 0 {
		t.Error("message delivered without CSRF token")
	}
}

func TestContactRateLimited(t *testing.T) {
	sink := &recordingSink{}
	a := newTestApp(t, SiteConfig{}, WithSink(sink))
	c := newClient(t, a)
	c.get("/")

	for i := 0; i < 5; i++ {
		if rec := c.post("/contact/", validContact(), "HX-Request", "true"); rec.Code != http.StatusOK {
			t.Fatalf("message %d: status = %d", i, rec.Code)
		}
	}
	if rec := c.post("/contact/", validContact(), "HX-Request", "true"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if sink.count() != 5 {
		t.Errorf("delivered = %d, want 5", sink.count())
	}
}

func TestContactDeliveryFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("smtp down")}
	a := newTestApp(t, SiteConfig{}, WithSink(sink))
	c := newClient(t, a)
	c.get("/")

	rec := c.post("/contact/", validContact(), "HX-Request", "true")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "could not be sent") {
		t.Error("failure notice missing")
	}
}

func TestInboxSinkStoresMessages(t *testing.T) {
	a := newTestApp(t, SiteConfig{Contact: ContactConfig{Sink: SinkInbox}})
	c := newClient(t, a)
	c.get("/")
	c.post("/contact/", validContact(), "HX-Request", "true")

	if n, _ := a.Store.CountMessages(); n != 1 {
		t.Errorf("inbox has %d messages, want 1", n)
	}
}

func TestNotFound(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	rec := newClient(t, a).get("/nope/")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Page not found") {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestFavicon(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	rec := newClient(t, a).get("/favicon.svg")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("favicon: %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=86400" {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestEmbeddedAssetsServed(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	c := newClient(t, a)
	for _, path := range []string{"/public/site.js", "/public/site.css"} {
		rec := c.get(path + "?v=" + AssetVersion)
		if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
		if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
			t.Errorf("%s: Cache-Control = %q", path, cc)
		}
	}
}

func TestAdminLoginAndInbox(t *testing.T) {
	a := newTestApp(t, SiteConfig{AdminPassword: "hunter2", SessionSecret: "test-secret", Contact: ContactConfig{Sink: SinkInbox}})
	visitor := newClient(t, a)
	visitor.get("/")
	visitor.post("/contact/", validContact(), "HX-Request", "true")

	admin := newClient(t, a)
	if rec := admin.get("/admin/"); !strings.Contains(rec.Body.String(), "Password") {
		t.Fatalf("login form expected, got %d", rec.Code)
	}
	if rec := admin.post("/admin/login/", url.Values{"password": {"wrong"}}); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", rec.Code)
	}
	if rec := admin.post("/admin/login/", url.Values{"password": {"hunter2"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login: status = %d, want 303", rec.Code)
	}

	rec := admin.get("/admin/")
	if !strings.Contains(rec.Body.String(), "Ada Lovelace") {
		t.Fatal("inbox should list the message")
	}

	msgs, _ := a.Store.ListMessages()
	rec = admin.post("/admin/messages/"+msgs[0].ID+"/", url.Values{"_method": {http.MethodDelete}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete: status = %d, want 303", rec.Code)
	}
	if n, _ := a.Store.CountMessages(); n != 0 {
		t.Errorf("messages left = %d, want 0", n)
	}
}

func TestSecurityHeaders(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	h := newClient(t, a).get("/").Header()

	if csp := h.Get("Content-Security-Policy"); !strings.Contains(csp, "https://prod.spline.design") {
		t.Errorf("CSP does not allow the scene viewer: %q", csp)
	}
	if h.Get("X-Frame-Options") != "DENY" || h.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("frame/nosniff headers = %q/%q", h.Get("X-Frame-Options"), h.Get("X-Content-Type-Options"))
	}
	if v := h.Get("X-XSS-Protection"); v != "" {
		t.Errorf("X-XSS-Protection = %q, want unset", v)
	}
}

func TestBeaconNeedsNoCSRFToken(t *testing.T) {
	a := newTestApp(t, SiteConfig{AnalyticsEnabled: true})
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/collect", strings.NewReader(`{"path":"/"}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := newClient(t, a).do(req); rec.Code != http.StatusNoContent {
		t.Errorf("beacon status = %d, want 204", rec.Code)
	}
}

func TestAnalyticsAPIRequiresAdmin(t *testing.T) {
	a := newTestApp(t, SiteConfig{AnalyticsEnabled: true})
	c := newClient(t, a)

	if !strings.Contains(c.get("/").Body.String(), "data-analytics") {
		t.Error("page should opt in to analytics beacons")
	}
	if rec := c.get("/admin/analytics/api/stats"); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCustomHomeViewRenderedOncePerCacheEntry(t *testing.T) {
	var calls int
	home := func(cfg views.SiteConfig, p views.Page) templ.Component {
		calls++
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<p>custom "+p.Owner+" "+p.CSRF+"</p>")
			return err
		})
	}
	a := newTestAppWithViews(t, SiteConfig{Author: "Jane Roe"}, ViewFuncs{Home: home})

	if a.Views.NotFound == nil || a.Views.Navbar == nil {
		t.Fatal("unset views should fall back to the built-in components")
	}

	c := newClient(t, a)
	first := c.get("/").Body.String()
	second := c.get("/").Body.String()
	if !strings.HasPrefix(first, "<p>custom Jane Roe ") {
		t.Fatalf("custom home not rendered: %q", first)
	}
	if strings.Contains(second, csrfPlaceholder) || !strings.Contains(second, c.cookies["_csrf"].Value) {
		t.Errorf("cached page should carry the visitor's token: %q", second)
	}
	if calls != 1 {
		t.Errorf("home view built %d times, want 1 (second request is a cache hit)", calls)
	}
}

func TestAdminCoverUploadAndDelete(t *testing.T) {
	a := newTestApp(t, adminConfig())
	admin := loginAdmin(t, a)
	const slug = "neon-storefront"
	cover := "/public/uploads/" + slug + ".jpg"

	rec := admin.upload("/admin/projects/"+slug+"/image/", slug+".png", pngOf(t, 1600, 900).Bytes())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("upload: status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/?msg=cover-saved" {
		t.Errorf("upload: Location = %q", loc)
	}
	img, err := a.Store.GetProjectImage(slug)
	if err != nil {
		t.Fatalf("GetProjectImage: %v", err)
	}
	if img.Width != maxCoverWidth {
		t.Errorf("stored width = %d, want %d", img.Width, maxCoverWidth)
	}
	onDisk := filepath.Join(a.Config.StaticDir, uploadsSubdir, slug+".jpg")
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("cover not written: %v", err)
	}
	if !strings.Contains(newClient(t, a).get("/").Body.String(), cover) {
		t.Error("home page should show the new cover")
	}

	rec = admin.post("/admin/projects/"+slug+"/image/", url.Values{"_method": {http.MethodDelete}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/?msg=cover-removed" {
		t.Fatalf("delete: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if strings.Contains(newClient(t, a).get("/").Body.String(), cover) {
		t.Error("cover still shown after delete")
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Errorf("cover file should be removed, stat err = %v", err)
	}

	rec = admin.upload("/admin/projects/no-such/image/", "x.png", pngOf(t, 10, 10).Bytes())
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/?msg=no-such-project" {
		t.Errorf("unknown slug: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestCoverUploadCleansUpWhenSaveFails(t *testing.T) {
	a := newTestApp(t, adminConfig())
	admin := loginAdmin(t, a)
	if _, err := a.Store.db.Exec(`CREATE TRIGGER reject_covers BEFORE INSERT ON project_images
BEGIN SELECT RAISE(ABORT, 'rejected'); END`); err != nil {
		t.Fatal(err)
	}

	rec := admin.upload("/admin/projects/neon-storefront/image/", "shot.png", pngOf(t, 20, 20).Bytes())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	entries, _ := os.ReadDir(filepath.Join(a.Config.StaticDir, uploadsSubdir))
	if len(entries) != 0 {
		t.Errorf("orphaned files left in uploads: %d", len(entries))
	}
}
