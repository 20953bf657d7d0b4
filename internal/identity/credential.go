package identity

import (
	"net/http"
	"strings"
)

// SessionCookieName is the portal's session cookie.
const SessionCookieName = "student_session"

// CredentialFromRequest extracts the session credential from a request:
// session cookie first, then a bearer Authorization header, then a token
// query parameter (websocket clients cannot always set headers).
func CredentialFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}
