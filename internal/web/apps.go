package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/logger"
	"github.com/schoolthings/apphub/internal/models"
	"github.com/schoolthings/apphub/internal/sanitize"
	"github.com/schoolthings/apphub/internal/validation"
)

type appsPage struct {
	basePage
	CleanApps []sanitize.CleanApp
}

// handleApps lists all registered apps. A listing failure degrades to an
// empty page rather than an error response.
func (s *Server) handleApps(w http.ResponseWriter, r *http.Request) {
	page := appsPage{basePage: s.basePage(r)}
	if apps, err := s.db.ListApps(r.Context()); err != nil {
		logger.Ctx(r.Context()).Error("failed to list apps", "error", err)
	} else {
		page.CleanApps = sanitize.Apps(apps)
	}
	s.render(w, r, "apps.html", page)
}

// handleCreateApp renders the app registration form
func (s *Server) handleCreateApp(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "create_app.html", s.basePage(r))
}

// handleCreateAppSubmit registers an app owned by the signed-in user
func (s *Server) handleCreateAppSubmit(w http.ResponseWriter, r *http.Request) {
	_, user := s.auth.SignedIn(r)
	if user == nil {
		http.Error(w, "Must be signed in", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	title := r.PostFormValue("title")
	description := r.PostFormValue("description")
	domain := r.PostFormValue("domain")
	token := r.PostFormValue("token")

	if err := validation.ValidateDomain(domain); err != nil {
		http.Error(w, "Invalid domain", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateTitle(title); err != nil {
		http.Error(w, "Title must be 3-24 characters", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDescription(description); err != nil {
		http.Error(w, "Description is too long - max 256 characters", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateToken(token); err != nil {
		http.Error(w, "Token must be exactly 60 characters", http.StatusBadRequest)
		return
	}

	app, err := s.db.CreateApp(r.Context(), user.ID, title, description, domain, token)
	if err != nil {
		var uv *db.UniqueViolationError
		if errors.As(err, &uv) {
			http.Error(w, "Duplicate app name", http.StatusBadRequest)
			return
		}
		logger.Ctx(r.Context()).Error("failed to add app to database", "error", err)
		http.Error(w, "Failed to add app to database", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/apps/"+url.PathEscape(app.Title), http.StatusSeeOther)
}

type appPage struct {
	basePage
	App        *models.App
	CleanApp   sanitize.CleanApp
	Owner      *models.User
	CleanOwner *sanitize.CleanUser
}

// handleApp renders an app's detail page with its owner
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	app, err := s.db.GetAppByTitle(r.Context(), title)
	if err != nil {
		if !errors.Is(err, db.ErrAppNotFound) {
			logger.Ctx(r.Context()).Error("app lookup failed", "error", err)
		}
		http.Error(w, "App not found", http.StatusNotFound)
		return
	}

	page := appPage{
		basePage: s.basePage(r),
		App:      app,
		CleanApp: sanitize.App(app),
	}
	if owner, err := s.db.GetUserByID(r.Context(), app.OwnerID); err == nil {
		clean := sanitize.User(owner)
		page.Owner = owner
		page.CleanOwner = &clean
	}
	s.render(w, r, "app.html", page)
}

// handleDeleteApp deletes an app after re-authenticating the submitted
// credentials and verifying ownership. The app's id is pruned from every
// repo referencing it before the row is dropped.
func (s *Server) handleDeleteApp(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	user, err := s.auth.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		http.Error(w, "Failed to authenticate user", http.StatusForbidden)
		return
	}

	app, err := s.db.GetAppByTitle(r.Context(), title)
	if err != nil {
		http.Error(w, "App not found", http.StatusNotFound)
		return
	}

	if err := s.auth.RequireOwner(user, app.OwnerID); err != nil {
		http.Error(w, "You don't have permission to delete this app", http.StatusForbidden)
		return
	}

	if err := s.db.DeleteApp(r.Context(), app.ID); err != nil {
		logger.Ctx(r.Context()).Error("failed to delete app", "error", err, "app_id", app.ID)
		http.Error(w, "Failed to delete app", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
