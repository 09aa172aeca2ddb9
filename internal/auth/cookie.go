package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

// SessionCookieName is the cookie carrying the signed session id
const SessionCookieName = "session_id"

// CookieCodec signs and encrypts the session id cookie. The browser only
// ever sees an opaque blob; the decoded value is the integer session row id.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewCookieCodec creates a codec from a 32/64-byte hash key and an
// optional 16/24/32-byte block key (nil disables encryption, keeping
// signing only).
func NewCookieCodec(hashKey, blockKey []byte, secure bool) *CookieCodec {
	return &CookieCodec{
		sc:     securecookie.New(hashKey, blockKey),
		secure: secure,
	}
}

// Read extracts and verifies the session id from the request cookies.
// Fails if the cookie is absent, tampered with, or unparsable.
func (c *CookieCodec) Read(r *http.Request) (int64, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return 0, fmt.Errorf("no %s cookie: %w", SessionCookieName, err)
	}

	var sessionID int64
	if err := c.sc.Decode(SessionCookieName, cookie.Value, &sessionID); err != nil {
		return 0, fmt.Errorf("failed to decode %s cookie: %w", SessionCookieName, err)
	}
	return sessionID, nil
}

// Write sets a signed session id cookie on the response
func (c *CookieCodec) Write(w http.ResponseWriter, sessionID int64) error {
	encoded, err := c.sc.Encode(SessionCookieName, sessionID)
	if err != nil {
		return fmt.Errorf("failed to encode %s cookie: %w", SessionCookieName, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
