package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "auth_token"

// SetSessionCookie attaches the session token to the response.
// HttpOnly and SameSite=Strict always; Secure only outside local
// development so the cookie works over plain http in dev.
func SetSessionCookie(w http.ResponseWriter, token string, isProduction bool, duration time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(duration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie immediately
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetSessionTokenFromCookie reads the session token from the request
func GetSessionTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
