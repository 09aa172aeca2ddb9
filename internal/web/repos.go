package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/schoolthings/apphub/internal/auth"
	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/logger"
	"github.com/schoolthings/apphub/internal/models"
	"github.com/schoolthings/apphub/internal/sanitize"
	"github.com/schoolthings/apphub/internal/validation"
)

type reposPage struct {
	basePage
	CleanRepos []sanitize.CleanRepo
}

// handleRepos lists all repos
func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	page := reposPage{basePage: s.basePage(r)}
	if repos, err := s.db.ListRepos(r.Context()); err != nil {
		logger.Ctx(r.Context()).Error("failed to list repos", "error", err)
	} else {
		page.CleanRepos = sanitize.Repos(repos)
	}
	s.render(w, r, "repos.html", page)
}

// handleCreateRepo renders the repo creation form
func (s *Server) handleCreateRepo(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "create_repo.html", s.basePage(r))
}

// handleCreateRepoSubmit creates a repo owned by the signed-in user
func (s *Server) handleCreateRepoSubmit(w http.ResponseWriter, r *http.Request) {
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

	if err := validation.ValidateTitle(title); err != nil {
		http.Error(w, "Title must be 3-24 characters", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDescription(description); err != nil {
		http.Error(w, "Description is too long - max 256 characters", http.StatusBadRequest)
		return
	}

	repo, err := s.db.CreateRepo(r.Context(), user.ID, title, description)
	if err != nil {
		var uv *db.UniqueViolationError
		if errors.As(err, &uv) {
			http.Error(w, "Duplicate repo name", http.StatusBadRequest)
			return
		}
		logger.Ctx(r.Context()).Error("failed to add repo to database", "error", err)
		http.Error(w, "Failed to add repo to database", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/repos/"+url.PathEscape(repo.Title), http.StatusSeeOther)
}

type repoPage struct {
	basePage
	Repo       *models.Repo
	CleanRepo  sanitize.CleanRepo
	Owner      *models.User
	CleanOwner *sanitize.CleanUser
	Apps       []models.App
	CleanApps  []sanitize.CleanApp
}

// handleRepo renders a repo's detail page with its owner and member apps
func (s *Server) handleRepo(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	repo, err := s.db.GetRepoByTitle(r.Context(), title)
	if err != nil {
		if !errors.Is(err, db.ErrRepoNotFound) {
			logger.Ctx(r.Context()).Error("repo lookup failed", "error", err)
		}
		http.Error(w, "Repo not found", http.StatusNotFound)
		return
	}

	page := repoPage{
		basePage:  s.basePage(r),
		Repo:      repo,
		CleanRepo: sanitize.Repo(repo),
	}
	if owner, err := s.db.GetUserByID(r.Context(), repo.OwnerID); err == nil {
		clean := sanitize.User(owner)
		page.Owner = owner
		page.CleanOwner = &clean
	}
	if apps, err := s.db.RepoApps(r.Context(), repo); err != nil {
		logger.Ctx(r.Context()).Error("failed to resolve repo apps", "error", err, "repo_id", repo.ID)
	} else {
		page.Apps = apps
		page.CleanApps = sanitize.Apps(apps)
	}
	s.render(w, r, "repo.html", page)
}

// handleDeleteRepo deletes a repo after re-authenticating the submitted
// credentials and verifying ownership. Member apps are untouched.
func (s *Server) handleDeleteRepo(w http.ResponseWriter, r *http.Request) {
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

	repo, err := s.db.GetRepoByTitle(r.Context(), title)
	if err != nil {
		http.Error(w, "Repo not found", http.StatusNotFound)
		return
	}

	if err := s.auth.RequireOwner(user, repo.OwnerID); err != nil {
		http.Error(w, "You don't have permission to delete this repo", http.StatusForbidden)
		return
	}

	if err := s.db.DeleteRepo(r.Context(), repo.ID); err != nil {
		logger.Ctx(r.Context()).Error("failed to delete repo", "error", err, "repo_id", repo.ID)
		http.Error(w, "Failed to delete repo", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAddApp appends an app to a repo's member list. Gated on the
// cookie session: only the repo's owner may add members.
func (s *Server) handleAddApp(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	repo, err := s.db.GetRepoByTitle(r.Context(), title)
	if err != nil {
		http.Error(w, "Repo not found", http.StatusNotFound)
		return
	}

	if _, err := s.auth.RequireSessionOwner(r, repo.OwnerID); err != nil {
		if errors.Is(err, auth.ErrNotOwner) {
			http.Error(w, "You don't have permission to add an app to this repo", http.StatusForbidden)
			return
		}
		http.Error(w, "Failed to authenticate user", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	app, err := s.db.GetAppByTitle(r.Context(), r.PostFormValue("title"))
	if err != nil {
		http.Error(w, "Failed to get app id from title", http.StatusNotFound)
		return
	}

	if err := s.db.AddAppToRepo(r.Context(), repo.ID, app.ID); err != nil {
		logger.Ctx(r.Context()).Error("failed to add app to repo", "error", err, "repo_id", repo.ID, "app_id", app.ID)
		http.Error(w, "Failed to add app.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/repos/"+url.PathEscape(repo.Title), http.StatusSeeOther)
}
