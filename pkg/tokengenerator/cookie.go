package tokengenerator

import (
	"net/http"
	"time"
)

// CookieSetter writes and clears session token cookies
type CookieSetter struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// NewCookieSetter creates a cookie setter for session tokens
func NewCookieSetter(httpOnly, secure bool) *CookieSetter {
	return &CookieSetter{
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetCookie sets the named token cookie with the given value and expiry
func (c *CookieSetter) SetCookie(w http.ResponseWriter, tokenName, tokenValue string, expire time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenName,
		Path:     c.Path,
		Value:    tokenValue,
		Expires:  expire,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// ClearCookie clears the named token cookie
func (c *CookieSetter) ClearCookie(w http.ResponseWriter, tokenName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenName,
		Path:     c.Path,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}
