// Package sanitize converts raw stored strings into representations that
// are safe to interpolate into URLs and HTML. Every user-originated field
// is passed through Clean before it reaches a template.
package sanitize

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/schoolthings/apphub/internal/models"
)

// strict strips all HTML elements and escapes what remains
var strict = bluemonday.StrictPolicy()

// Cleaned holds the two safe representations of a stored string:
// URL is percent-encoded for use in URLs and attributes, HTML is
// tag-stripped and entity-escaped for use in markup. HTML is typed
// template.HTML because it is already escaped; re-escaping in the
// template would double-encode entities.
type Cleaned struct {
	URL  string
	HTML template.HTML
}

// Clean builds both representations. Pure and total: no input can fail.
func Clean(s string) Cleaned {
	return Cleaned{
		URL:  percentEncode(s),
		HTML: template.HTML(strict.Sanitize(s)),
	}
}

const upperhex = "0123456789ABCDEF"

// percentEncode escapes every non-alphanumeric byte as %XX. Stricter than
// url.QueryEscape, which passes '-', '_', '.' and '~' through.
func percentEncode(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			out = append(out, c)
			continue
		}
		out = append(out, '%', upperhex[c>>4], upperhex[c&0xf])
	}
	return string(out)
}

// CleanUser is the display-safe projection of a user
type CleanUser struct {
	Username Cleaned
	Email    Cleaned
}

// User builds the display-safe projection of u
func User(u *models.User) CleanUser {
	return CleanUser{
		Username: Clean(u.Username),
		Email:    Clean(u.Email),
	}
}

// CleanApp is the display-safe projection of an app
type CleanApp struct {
	Title          Cleaned
	Description    Cleaned
	Domain         Cleaned
	Token          Cleaned
	ConnectedError Cleaned
}

// App builds the display-safe projection of a
func App(a *models.App) CleanApp {
	return CleanApp{
		Title:          Clean(a.Title),
		Description:    Clean(a.Description),
		Domain:         Clean(a.Domain),
		Token:          Clean(a.Token),
		ConnectedError: Clean(a.ConnectedError),
	}
}

// Apps builds display-safe projections for a slice of apps
func Apps(apps []models.App) []CleanApp {
	cleaned := make([]CleanApp, 0, len(apps))
	for i := range apps {
		cleaned = append(cleaned, App(&apps[i]))
	}
	return cleaned
}

// CleanRepo is the display-safe projection of a repo
type CleanRepo struct {
	Title       Cleaned
	Description Cleaned
}

// Repo builds the display-safe projection of r
func Repo(r *models.Repo) CleanRepo {
	return CleanRepo{
		Title:       Clean(r.Title),
		Description: Clean(r.Description),
	}
}

// Repos builds display-safe projections for a slice of repos
func Repos(repos []models.Repo) []CleanRepo {
	cleaned := make([]CleanRepo, 0, len(repos))
	for i := range repos {
		cleaned = append(cleaned, Repo(&repos[i]))
	}
	return cleaned
}
