// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"backoffice/internal/models"
)

// WebsiteSettingsSource provides the current website settings row.
type WebsiteSettingsSource interface {
	Get() (*models.WebsiteSetting, error)
}

// AssetURLResolver maps a stored asset key to its public URL.
type AssetURLResolver interface {
	URL(path *string) *string
}

// HTMLInjector rewrites full HTML page responses to carry the stored
// site metadata and tracking scripts: a document-title bootstrap, the
// favicon link, description and Open Graph meta tags before </head>,
// and the admin-configured footer scripts before </body>.
//
// JSON and partial-page responses are passed through untouched, as is
// any document missing the closing tag an insertion targets.
type HTMLInjector struct {
	settings WebsiteSettingsSource
	assets   AssetURLResolver
}

func NewHTMLInjector(settings WebsiteSettingsSource, assets AssetURLResolver) *HTMLInjector {
	return &HTMLInjector{settings: settings, assets: assets}
}

// bufferedWriter captures the full response body so the injector can
// rewrite it before sending. Headers and status are deferred too, since
// Content-Length changes after injection.
type bufferedWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(code int) { b.status = code }

func (b *bufferedWriter) Write(p []byte) (int, error) { return b.body.Write(p) }

// Middleware buffers HTML responses and applies the injections. On any
// settings lookup failure the original body is sent unchanged: a broken
// settings row must not take pages down.
func (inj *HTMLInjector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			next.ServeHTTP(w, r)
			return
		}

		buf := newBufferedWriter()
		next.ServeHTTP(buf, r)

		body := buf.body.Bytes()
		if isHTML(buf.header) {
			if setting, err := inj.settings.Get(); err == nil {
				body = inj.Apply(body, setting)
			}
		}

		for k, vv := range buf.header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(buf.status)
		w.Write(body)
	})
}

// Apply performs the insertions on a complete HTML document. Each closing
// tag is matched case-insensitively on its first occurrence; a missing tag
// skips that insertion rather than failing the page.
func (inj *HTMLInjector) Apply(body []byte, setting *models.WebsiteSetting) []byte {
	if head := inj.headMarkup(setting); head != "" {
		body = insertBefore(body, "</head>", head)
	}
	if setting.FooterScripts != nil && strings.TrimSpace(*setting.FooterScripts) != "" {
		body = insertBefore(body, "</body>", *setting.FooterScripts+"\n")
	}
	return body
}

// headMarkup builds the block inserted before </head>, in a fixed order:
// title bootstrap, favicon, description, Open Graph tags, then the
// tracking scripts (Meta pixel, Google tag, TikTok pixel, generic header
// scripts). Script fields are raw admin-authored markup and go in
// verbatim; text values are escaped.
func (inj *HTMLInjector) headMarkup(setting *models.WebsiteSetting) string {
	var b strings.Builder

	if setting.SiteName != "" {
		b.WriteString(titleScript(setting.SiteName))
	}

	if favicon := inj.assets.URL(setting.FaviconPath); favicon != nil {
		fmt.Fprintf(&b, "<link rel=\"icon\" href=%q>\n", *favicon)
	}

	description := ""
	if setting.SiteDescription != nil {
		description = strings.TrimSpace(*setting.SiteDescription)
	}
	if description != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=%q>\n", html.EscapeString(description))
	}

	if setting.SiteName != "" {
		fmt.Fprintf(&b, "<meta property=\"og:site_name\" content=%q>\n", html.EscapeString(setting.SiteName))
	}
	if description != "" {
		fmt.Fprintf(&b, "<meta property=\"og:description\" content=%q>\n", html.EscapeString(description))
	}
	if ogImage := inj.assets.URL(setting.DefaultOgImagePath); ogImage != nil {
		fmt.Fprintf(&b, "<meta property=\"og:image\" content=%q>\n", *ogImage)
	}

	for _, script := range []*string{
		setting.MetaPixelScript,
		setting.GoogleTagScript,
		setting.TiktokPixelScript,
		setting.HeaderScripts,
	} {
		if script != nil && strings.TrimSpace(*script) != "" {
			b.WriteString(*script)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// titleScript builds the client-side title bootstrap. It derives the page
// title from the framework page state (props.title, then the component
// name) and falls back to the bare site name, formatted "<page> - <site>".
func titleScript(siteName string) string {
	// json.Marshal produces a safely quoted JS string literal.
	name, err := json.Marshal(siteName)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`<script>
(function () {
  var site = %s;
  var page = "";
  var el = document.getElementById("app");
  if (el && el.dataset.page) {
    try {
      var state = JSON.parse(el.dataset.page);
      page = (state.props && state.props.title) || state.component || "";
    } catch (e) {}
  }
  document.title = page ? page + " - " + site : site;
})();
</script>
`, name)
}

// insertBefore splices markup ahead of the first occurrence of tag,
// matched case-insensitively. Missing tag leaves body unchanged.
func insertBefore(body []byte, tag, markup string) []byte {
	lower := bytes.ToLower(body)
	idx := bytes.Index(lower, []byte(strings.ToLower(tag)))
	if idx < 0 {
		return body
	}
	out := make([]byte, 0, len(body)+len(markup))
	out = append(out, body[:idx]...)
	out = append(out, markup...)
	out = append(out, body[idx:]...)
	return out
}

// wantsJSON reports whether the request expects a JSON or partial-page
// response rather than a full HTML document.
func wantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Inertia") != "" {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// isHTML reports whether the buffered response is an HTML document.
func isHTML(h http.Header) bool {
	return strings.Contains(h.Get("Content-Type"), "text/html")
}
