// Package auth is the single session/ownership module shared by every
// route: session resolution from the signed cookie, signed-in user
// resolution, session attachment on login, and the ownership gate used by
// delete/add mutations.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/logger"
	"github.com/schoolthings/apphub/internal/models"
)

// ErrNotOwner is returned by RequireOwner when the acting user does not
// own the resource.
var ErrNotOwner = errors.New("not the resource owner")

// Resolver resolves sessions and users from requests and gates
// ownership-based mutations.
type Resolver struct {
	db      *db.DB
	cookies *CookieCodec
}

// NewResolver creates a Resolver backed by database and cookies
func NewResolver(database *db.DB, cookies *CookieCodec) *Resolver {
	return &Resolver{db: database, cookies: cookies}
}

// Cookies exposes the cookie codec (used by testutil to mint cookies)
func (a *Resolver) Cookies() *CookieCodec {
	return a.cookies
}

// ResolveSession resolves the request's session from the signed cookie.
// Never creates a session: absent, tampered or stale cookies fail.
func (a *Resolver) ResolveSession(r *http.Request) (*models.Session, error) {
	sessionID, err := a.cookies.Read(r)
	if err != nil {
		return nil, err
	}
	return a.db.GetSession(r.Context(), sessionID)
}

// ResolveUser loads the user a session is logged in as.
// Returns db.ErrSessionAnonymous for sessions with no logged-in user.
func (a *Resolver) ResolveUser(ctx context.Context, session *models.Session) (*models.User, error) {
	if session.LoggedInUser == nil {
		return nil, db.ErrSessionAnonymous
	}
	return a.db.GetUserByID(ctx, *session.LoggedInUser)
}

// SignedIn resolves the visitor's session and user for page context.
// Any failure degrades to anonymous (nil, nil) rather than propagating:
// backend errors must not leak into page rendering.
func (a *Resolver) SignedIn(r *http.Request) (*models.Session, *models.User) {
	session, err := a.ResolveSession(r)
	if err != nil {
		return nil, nil
	}
	user, err := a.ResolveUser(r.Context(), session)
	if err != nil {
		return session, nil
	}
	return session, user
}

// Attach marks the visitor's session as logged in as userID. A returning
// browser's existing session is updated in place; otherwise a session row
// is created and a fresh cookie set. If the cookie references a session
// row that no longer exists, a new session is created instead.
func (a *Resolver) Attach(w http.ResponseWriter, r *http.Request, userID int64) error {
	if sessionID, err := a.cookies.Read(r); err == nil {
		err := a.db.SetSessionUser(r.Context(), sessionID, userID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, db.ErrSessionNotFound) {
			return err
		}
		logger.Ctx(r.Context()).Warn("session cookie references missing row, creating new session",
			"session_id", sessionID)
	}

	session, err := a.db.CreateSession(r.Context(), userID)
	if err != nil {
		return err
	}
	return a.cookies.Write(w, session.ID)
}

// Authenticate verifies submitted credentials against the user table.
// Returns db.ErrInvalidCredentials for unknown users and bad passwords alike.
func (a *Resolver) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	return a.db.AuthenticateUser(ctx, username, password)
}

// RequireOwner verifies that the acting user owns the resource.
// Returns ErrNotOwner otherwise. Callers authenticate first (via
// Authenticate or the session) so not-found checks can sit between the
// two steps.
func (a *Resolver) RequireOwner(user *models.User, ownerID int64) error {
	if user.ID != ownerID {
		return ErrNotOwner
	}
	return nil
}

// RequireSessionOwner verifies that the request's session is logged in as
// the resource owner. Used by mutations gated on the cookie session
// rather than re-submitted credentials.
func (a *Resolver) RequireSessionOwner(r *http.Request, ownerID int64) (*models.User, error) {
	session, err := a.ResolveSession(r)
	if err != nil {
		return nil, err
	}
	user, err := a.ResolveUser(r.Context(), session)
	if err != nil {
		return nil, err
	}
	if err := a.RequireOwner(user, ownerID); err != nil {
		return nil, err
	}
	return user, nil
}
