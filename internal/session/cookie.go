package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie carrying the signed ticket.
const CookieName = "sid"

// SetCookie attaches a fresh ticket for subjectID to the response.
// SameSite stays lax rather than strict: mobile in-app browsers drop strict
// cookies when the user lands via a scanned QR link.
func SetCookie(w http.ResponseWriter, t *Ticketer, subjectID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    t.Issue(subjectID),
		Path:     "/",
		MaxAge:   int(t.MaxAge() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// ClearCookie logs the client out by overwriting the cookie with an empty,
// already-expired value.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// FromRequest extracts the raw ticket from the request cookie.
// Returns "" when the cookie is absent.
func FromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
