package validation

import (
	"fmt"
	"regexp"
	"strconv"
)

// Validation limits shared by usernames, app titles and repo titles
const (
	MaxTitleLength       = 24  // Max title/username length
	MaxDescriptionLength = 256 // Max app/repo description length
	TokenLength          = 60  // App tokens are exactly 60 chars
	MaxPort              = 65535
)

// titleRegex requires 3+ chars: alphanumeric edges, underscores and
// hyphens allowed in the middle
var titleRegex = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z_-]+[0-9A-Za-z]$`)

// domainRegex matches https URLs with an optional subdomain, a 2-3 letter
// TLD and an optional port (range-checked separately)
var domainRegex = regexp.MustCompile(`^https://([a-zA-Z0-9][a-zA-Z0-9-]{1,61}[a-zA-Z0-9]\.)?[a-zA-Z0-9][a-zA-Z0-9-]{1,61}[a-zA-Z0-9]\.[a-zA-Z]{2,3}(:[0-9]{1,5})?$`)

// portRegex extracts a trailing :port suffix
var portRegex = regexp.MustCompile(`:([0-9]{1,5})$`)

// ValidateTitle validates a username, app title or repo title.
// Titles are 3-24 chars, start and end alphanumeric, and may contain
// underscores and hyphens in between.
func ValidateTitle(title string) error {
	if len(title) > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	}
	if !titleRegex.MatchString(title) {
		return fmt.Errorf("title must be 3-%d characters: letters, digits, '_' or '-', starting and ending with a letter or digit", MaxTitleLength)
	}
	return nil
}

// ValidateDomain validates an app domain. Only https URLs are accepted;
// a port, when present, must be below 65536.
func ValidateDomain(domain string) error {
	if !domainRegex.MatchString(domain) {
		return fmt.Errorf("domain must be an https URL")
	}
	if m := portRegex.FindStringSubmatch(domain); m != nil {
		port, err := strconv.Atoi(m[1])
		if err != nil || port > MaxPort {
			return fmt.Errorf("domain port must be below %d", MaxPort+1)
		}
	}
	return nil
}

// ValidateToken validates an app token (exactly 60 characters)
func ValidateToken(token string) error {
	if len(token) != TokenLength {
		return fmt.Errorf("token must be exactly %d characters", TokenLength)
	}
	return nil
}

// ValidateDescription validates an app or repo description
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("description is too long - max %d characters", MaxDescriptionLength)
	}
	return nil
}
