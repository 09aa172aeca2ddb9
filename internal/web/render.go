package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/schoolthings/apphub/internal/logger"
	"github.com/schoolthings/apphub/internal/models"
	"github.com/schoolthings/apphub/internal/sanitize"
)

//go:embed templates/*.html templates/*.xml
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html", "templates/*.xml"))

// basePage carries the context every page template expects: the canonical
// site domain, the signed-in visitor (if any) with a display-safe
// projection, and the CSRF field for forms.
type basePage struct {
	SiteDomain string
	User       *models.User
	CleanUser  *sanitize.CleanUser
	CSRFField  template.HTML
}

// basePage resolves the visitor for page context. Lookup failures degrade
// to an anonymous page rather than an error response.
func (s *Server) basePage(r *http.Request) basePage {
	page := basePage{
		SiteDomain: s.siteDomain,
		CSRFField:  csrf.TemplateField(r),
	}
	if _, user := s.auth.SignedIn(r); user != nil {
		clean := sanitize.User(user)
		page.User = user
		page.CleanUser = &clean
	}
	return page
}

// render executes the named template into a buffer first so a template
// error yields a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Ctx(r.Context()).Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// renderXML is render with an XML content type (sitemap)
func (s *Server) renderXML(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Ctx(r.Context()).Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(buf.Bytes())
}
