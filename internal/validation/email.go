package validation

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// IsValidEmail checks if an email address is valid.
// Format checking is delegated to govalidator's RFC-based matcher; we only
// add the length bounds it does not enforce.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return govalidator.IsEmail(email)
}

// NormalizeEmail trims whitespace and lowercases the domain part
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
