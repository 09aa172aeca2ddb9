package web

import (
	"errors"
	"html/template"
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

// loginPage carries optional re-display values from the query string,
// sanitized before rendering
type loginPage struct {
	basePage
	Error    template.HTML
	Username template.HTML
}

// handleLogin renders the login form, re-displaying a failed attempt's
// error and username from the query string
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	page := loginPage{basePage: s.basePage(r)}
	if msg := r.URL.Query().Get("error"); msg != "" {
		page.Error = sanitize.Clean(msg).HTML
	}
	if username := r.URL.Query().Get("username"); username != "" {
		page.Username = sanitize.Clean(username).HTML
	}
	s.render(w, r, "login.html", page)
}

// redirectLogin sends the browser back to the login form with the error
// and attempted username carried as query parameters
func redirectLogin(w http.ResponseWriter, r *http.Request, message, username string) {
	v := url.Values{}
	v.Set("error", message)
	if username != "" {
		v.Set("username", username)
	}
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

// handleLoginSubmit authenticates the submitted credentials and attaches
// the visitor's session. A generic failure message avoids distinguishing
// unknown users from wrong passwords.
func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := s.auth.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, db.ErrInvalidCredentials) {
			logger.Ctx(r.Context()).Error("login lookup failed", "error", err)
		}
		redirectLogin(w, r, "Couldn't authenticate user", username)
		return
	}

	if err := s.auth.Attach(w, r, user.ID); err != nil {
		logger.Ctx(r.Context()).Error("failed to attach session", "error", err, "user_id", user.ID)
		redirectLogin(w, r, "Failed to set session_id cookie.", username)
		return
	}

	http.Redirect(w, r, "/users/"+url.PathEscape(user.Username), http.StatusSeeOther)
}

// signupPage carries optional re-display values from the query string
type signupPage struct {
	basePage
	Error    template.HTML
	Username template.HTML
	Email    template.HTML
}

// handleSignup renders the signup form
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	page := signupPage{basePage: s.basePage(r)}
	if msg := r.URL.Query().Get("error"); msg != "" {
		page.Error = sanitize.Clean(msg).HTML
	}
	if username := r.URL.Query().Get("username"); username != "" {
		page.Username = sanitize.Clean(username).HTML
	}
	if email := r.URL.Query().Get("email"); email != "" {
		page.Email = sanitize.Clean(email).HTML
	}
	s.render(w, r, "signup.html", page)
}

func redirectSignup(w http.ResponseWriter, r *http.Request, message, username, email string) {
	v := url.Values{}
	v.Set("error", message)
	if username != "" {
		v.Set("username", username)
	}
	if email != "" {
		v.Set("email", email)
	}
	http.Redirect(w, r, "/signup?"+v.Encode(), http.StatusSeeOther)
}

// handleSignupSubmit validates the form, creates the user and attaches
// the session. Validation short-circuits on the first failure: username
// format, then email format, then password length.
func (s *Server) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	if err := validation.ValidateTitle(username); err != nil {
		redirectSignup(w, r, "Invalid username", username, email)
		return
	}
	if !validation.IsValidEmail(email) {
		redirectSignup(w, r, "Invalid email", username, email)
		return
	}
	email = validation.NormalizeEmail(email)
	if len(password) < 1 || len(password) > auth.MaxPasswordLength {
		redirectSignup(w, r, "Invalid password", username, email)
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to hash password", "error", err)
		redirectSignup(w, r, "Failed to add user to database", username, email)
		return
	}

	user, err := s.db.CreateUser(r.Context(), username, email, passwordHash)
	if err != nil {
		var uv *db.UniqueViolationError
		if errors.As(err, &uv) {
			switch uv.Column {
			case "username":
				redirectSignup(w, r, "Duplicate username", username, email)
			case "email":
				redirectSignup(w, r, "Duplicate email", username, email)
			default:
				redirectSignup(w, r, "Failed to add user to database", username, email)
			}
			return
		}
		logger.Ctx(r.Context()).Error("failed to add user to database", "error", err)
		redirectSignup(w, r, "Failed to add user to database", username, email)
		return
	}

	if err := s.auth.Attach(w, r, user.ID); err != nil {
		logger.Ctx(r.Context()).Error("failed to attach session", "error", err, "user_id", user.ID)
		redirectSignup(w, r, "Failed to set session_id cookie.", username, email)
		return
	}

	http.Redirect(w, r, "/users/"+url.PathEscape(user.Username), http.StatusSeeOther)
}

// handleSignout clears the session's logged-in user. The session row and
// its cookie persist so a later login can reuse them.
func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	session, err := s.auth.ResolveSession(r)
	if err != nil {
		http.Error(w, "Failed to get session from cookies", http.StatusInternalServerError)
		return
	}
	if session.LoggedInUser == nil {
		http.Error(w, "Session not signed in", http.StatusBadRequest)
		return
	}

	if err := s.db.ClearSessionUser(r.Context(), session.ID); err != nil {
		logger.Ctx(r.Context()).Error("failed to clear session", "error", err, "session_id", session.ID)
		http.Error(w, "Failed to update session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// profilePage is the public profile of a user
type profilePage struct {
	basePage
	Profile      *models.User
	CleanProfile sanitize.CleanUser
}

// handleUserProfile renders a public profile
func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := s.db.GetUserByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, db.ErrUserNotFound) {
			logger.Ctx(r.Context()).Error("profile lookup failed", "error", err)
		}
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	s.render(w, r, "user_profile.html", profilePage{
		basePage:     s.basePage(r),
		Profile:      profile,
		CleanProfile: sanitize.User(profile),
	})
}
