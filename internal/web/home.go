package web

import (
	"net/http"
	"os"

	"github.com/schoolthings/apphub/internal/logger"
	"github.com/schoolthings/apphub/internal/sanitize"
)

// handleHome renders the home page, anonymous or personalized
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home.html", s.basePage(r))
}

// faviconPath is resolved relative to the working directory, matching the
// deployment layout
const faviconPath = "static/favicon.ico"

// handleFavicon serves the favicon from disk, 404 when not deployed
func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(faviconPath); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, faviconPath)
}

// sitemapPage lists every public page URL for crawlers
type sitemapPage struct {
	SiteDomain string
	Users      []sanitize.CleanUser
	Apps       []sanitize.CleanApp
	Repos      []sanitize.CleanRepo
}

// handleSitemap renders the XML sitemap. Listing failures degrade to a
// sitemap of the static pages only.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	page := sitemapPage{SiteDomain: s.siteDomain}

	if users, err := s.db.ListUsers(r.Context()); err != nil {
		logger.Ctx(r.Context()).Error("failed to list users for sitemap", "error", err)
	} else {
		for i := range users {
			page.Users = append(page.Users, sanitize.User(&users[i]))
		}
	}
	if apps, err := s.db.ListApps(r.Context()); err != nil {
		logger.Ctx(r.Context()).Error("failed to list apps for sitemap", "error", err)
	} else {
		page.Apps = sanitize.Apps(apps)
	}
	if repos, err := s.db.ListRepos(r.Context()); err != nil {
		logger.Ctx(r.Context()).Error("failed to list repos for sitemap", "error", err)
	} else {
		page.Repos = sanitize.Repos(repos)
	}

	s.renderXML(w, r, "sitemap.xml", page)
}
