package view

import (
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// Layout is the data every page shares: header, flashes and theme.
type Layout struct {
	Title   string
	Session *domain.Session
	Badge   int
	Flashes []domain.Flash
	Dark    bool

	// Back is the current request URI, used by forms that return here.
	Back string

	// Refresh, when set, reloads the page once after the given URL and delay.
	Refresh *Refresh
}

// Refresh is a one-time delayed reload.
type Refresh struct {
	Seconds int
	URL     string
}

// ThemeIcon is the toggle icon: a sun while dark, a moon while light.
func (l Layout) ThemeIcon() string {
	if l.Dark {
		return "🌞"
	}
	return "🌙"
}

// Authenticated reports whether a user is logged in.
func (l Layout) Authenticated() bool { return l.Session.Authenticated() }

// Page is what a template receives.
type Page struct {
	Layout
	Data any
}

// ErrorData is shown by the error page.
type ErrorData struct {
	Heading string
	Message string
	BackURL string
	Back    string
}
