package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/junlend/web/internal/app/provider"
	"github.com/junlend/web/internal/domain/site"
)

// SnapshotElementID is the id of the script element carrying the hydration snapshot.
const SnapshotElementID = "__junlend_snapshot"

// themeScript resolves the theme before first paint. The server never knows
// the system preference, so it renders no theme class for "system" and this
// script fills it in from the cookie and prefers-color-scheme.
const themeScript = `(function(){try{var d=document.documentElement,a=d.getAttribute("data-theme-attr")||"class",k=d.getAttribute("data-theme-cookie")||"theme",m=document.cookie.match(new RegExp("(?:^|; )"+k+"=([^;]*)")),p=m?decodeURIComponent(m[1]):"system";if(p!=="light"&&p!=="dark"){p=window.matchMedia("(prefers-color-scheme: dark)").matches?"dark":"light"}if(a==="class"){d.classList.remove("light","dark");d.classList.add(p)}else{d.setAttribute(a,p)}d.style.colorScheme=p}catch(e){}})();`

func siteOf(page provider.PageScope) *site.Info {
	if page.Site == nil {
		return &site.Info{}
	}
	return page.Site
}

// Document renders the HTML document: head metadata, the theme pre-paint
// script, the body from the context children and the hydration snapshot.
func Document(snapshot provider.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)

		page := provider.Page(ctx)
		th := provider.Theme(ctx)
		info := siteOf(page)
		meta := info.Metadata(page.Page)

		h := newWriter(w)
		h.raw("<!DOCTYPE html><html")
		h.attr("lang", "en")
		h.raw(" suppresshydrationwarning")
		if cls := th.ServerClass(); cls != "" {
			if th.Attribute == "class" {
				h.attr("class", cls)
			} else {
				h.attr(th.Attribute, cls)
			}
			h.attr("style", "color-scheme: "+cls)
		}
		h.attr("data-theme-attr", th.Attribute)
		h.attr("data-theme-cookie", th.Cookie)
		if th.DisableTransitionOnChange {
			h.raw(" data-theme-no-transition")
		}
		h.raw("><head><meta charset=\"utf-8\">")

		h.raw("<title>")
		h.text(meta.Title)
		h.raw("</title>")
		h.meta("name", "application-name", meta.ApplicationName)
		h.meta("name", "description", meta.Description)
		h.raw("<link rel=\"manifest\"")
		h.attr("href", meta.Manifest)
		h.raw(">")
		h.raw("<link rel=\"icon\"")
		h.attr("href", meta.Icon)
		h.raw(">")

		h.meta("name", "apple-mobile-web-app-title", meta.AppleTitle)
		if meta.AppleCapable {
			h.meta("name", "apple-mobile-web-app-capable", "yes")
		}
		h.meta("name", "apple-mobile-web-app-status-bar-style", meta.AppleStatusBarStyle)

		h.meta("property", "og:type", meta.OpenGraph.Type)
		h.meta("property", "og:title", meta.OpenGraph.Title)
		h.meta("property", "og:site_name", meta.OpenGraph.SiteName)
		h.meta("property", "og:description", meta.OpenGraph.Description)
		h.meta("property", "og:url", meta.OpenGraph.URL)
		h.meta("property", "og:image", meta.OpenGraph.Image)

		h.meta("name", "twitter:card", meta.Twitter.Card)
		h.meta("name", "twitter:site", meta.Twitter.Site)
		h.meta("name", "twitter:title", meta.Twitter.Title)
		h.meta("name", "twitter:description", meta.Twitter.Description)
		h.meta("name", "twitter:image", meta.Twitter.Image)

		h.meta("name", "viewport", viewportContent(meta.Viewport))
		h.meta("name", "theme-color", meta.Viewport.ThemeColor)

		h.raw("<link rel=\"stylesheet\" href=\"/app.css\">")
		h.raw("<script>", themeScript, "</script>")
		h.raw("</head><body>")

		h.component(ctx, children)
		h.component(ctx, templ.JSONScript(SnapshotElementID, snapshot))

		h.raw("<script src=\"/app.js\" defer></script>")
		h.raw("</body></html>")
		return h.err
	})
}

func viewportContent(v site.Viewport) string {
	out := "width=" + v.Width
	if v.Height != "" {
		out += ", height=" + v.Height
	}
	if v.InitialScale != "" {
		if f, err := strconv.ParseFloat(v.InitialScale, 64); err == nil {
			out += ", initial-scale=" + strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	if v.ViewportFit != "" {
		out += ", viewport-fit=" + v.ViewportFit
	}
	return out
}
