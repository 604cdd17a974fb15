package views

import "github.com/a-h/templ"

// SceneViewerURL is the web component that renders the hero's 3D scene.
const SceneViewerURL = "https://unpkg.com/@splinetool/viewer@1/build/spline-viewer.js"

// PageMeta fills the document head.
type PageMeta struct {
	Title       string
	Description string
}

// Layout is the HTML document shell. scene loads the 3D viewer script.
func Layout(cfg SiteConfig, meta PageMeta, scene bool, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(meta.Title)
		h.raw("</title>")
		if meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", meta.Description)
			h.raw(">")
		}
		h.raw(`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`)
		h.raw(`<link rel="stylesheet"`)
		h.attr("href", assetURL(cfg, "site.css"))
		h.raw(">")
		h.raw("<noscript><style>", revealFallbackCSS, "</style></noscript>")
		if scene {
			h.raw(`<script type="module"`)
			h.attr("src", SceneViewerURL)
			h.raw("></script>")
		}
		h.raw("<script defer")
		h.attr("src", assetURL(cfg, "site.js"))
		h.raw("></script>")
		h.raw("</head><body")
		h.boolAttr("data-analytics", cfg.AnalyticsEnabled)
		h.raw(`><div class="page">`)
		h.render(body)
		h.raw("</div></body></html>")
	})
}

func assetURL(cfg SiteConfig, name string) string {
	u := "/public/" + name
	if cfg.AssetVersion != "" {
		u += "?v=" + cfg.AssetVersion
	}
	return u
}
