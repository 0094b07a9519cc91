package http

import (
	"net/http"
	"strings"
	"time"
)

// ThemeCookie remembers the visitor's colour scheme.
const ThemeCookie = "theme"

const (
	themeDark  = "dark"
	themeLight = "light"

	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
)

// prefersDark reads the theme cookie, falling back to the browser's
// colour scheme hint.
func prefersDark(r *http.Request) bool {
	if ck, err := r.Cookie(ThemeCookie); err == nil {
		switch ck.Value {
		case themeDark:
			return true
		case themeLight:
			return false
		}
	}
	return strings.EqualFold(strings.Trim(r.Header.Get(colorSchemeHint), `" `), themeDark)
}

// ThemeHandler toggles the colour scheme.
type ThemeHandler struct {
	secure bool
}

// NewThemeHandler creates a theme handler. secure marks the cookie Secure.
func NewThemeHandler(secure bool) *ThemeHandler {
	return &ThemeHandler{secure: secure}
}

// Toggle handles POST /theme.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	next := themeDark
	if prefersDark(r) {
		next = themeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	ac.Redirect(w, r, backTo(r, "/"))
}
