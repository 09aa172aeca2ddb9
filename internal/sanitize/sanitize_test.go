package sanitize

import (
	"strings"
	"testing"

	"github.com/schoolthings/apphub/internal/models"
)

func TestClean(t *testing.T) {
	t.Run("script tag is stripped from HTML form", func(t *testing.T) {
		c := Clean("<script>alert(1)</script>")
		if strings.Contains(string(c.HTML), "<") || strings.Contains(string(c.HTML), ">") {
			t.Errorf("HTML form still contains markup: %q", c.HTML)
		}
		if strings.Contains(string(c.HTML), "<script") {
			t.Errorf("script tag survived sanitization: %q", c.HTML)
		}
	})

	t.Run("script tag is percent-encoded in URL form", func(t *testing.T) {
		c := Clean("<script>alert(1)</script>")
		if !strings.HasPrefix(c.URL, "%3Cscript%3E") {
			t.Errorf("expected percent-encoded markup, got %q", c.URL)
		}
		if strings.ContainsAny(c.URL, "<>()/") {
			t.Errorf("URL form contains unescaped delimiters: %q", c.URL)
		}
	})

	t.Run("alphanumerics pass through both forms", func(t *testing.T) {
		c := Clean("abc123XYZ")
		if c.URL != "abc123XYZ" {
			t.Errorf("URL form changed plain text: %q", c.URL)
		}
		if c.HTML != "abc123XYZ" {
			t.Errorf("HTML form changed plain text: %q", c.HTML)
		}
	})

	t.Run("all non-alphanumerics are percent-encoded", func(t *testing.T) {
		// Stricter than QueryEscape: '-', '_', '.', '~' are encoded too
		c := Clean("a-b_c.d~e f")
		if c.URL != "a%2Db%5Fc%2Ed%7Ee%20f" {
			t.Errorf("got %q", c.URL)
		}
	})

	t.Run("empty string", func(t *testing.T) {
		c := Clean("")
		if c.URL != "" || c.HTML != "" {
			t.Errorf("expected empty forms, got %+v", c)
		}
	})
}

func TestProjections(t *testing.T) {
	t.Run("user projection cleans both fields", func(t *testing.T) {
		u := &models.User{Username: "<b>eve</b>", Email: "eve@example.com"}
		cu := User(u)
		if strings.Contains(string(cu.Username.HTML), "<b>") {
			t.Errorf("username not cleaned: %q", cu.Username.HTML)
		}
		if cu.Email.URL != "eve%40example%2Ecom" {
			t.Errorf("email URL form: %q", cu.Email.URL)
		}
	})

	t.Run("slice helpers preserve order", func(t *testing.T) {
		apps := []models.App{{Title: "one"}, {Title: "two"}}
		cleaned := Apps(apps)
		if len(cleaned) != 2 || cleaned[0].Title.HTML != "one" || cleaned[1].Title.HTML != "two" {
			t.Errorf("unexpected projection: %+v", cleaned)
		}
	})
}
