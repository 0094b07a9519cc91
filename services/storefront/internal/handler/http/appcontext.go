package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/api"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

// AppContext is the per-request application context handed to every page
// handler. It owns the backend connection, the session lookup and the
// visitor's flash queue.
type AppContext struct {
	pages     *Pages
	conn      *api.Conn
	visitorID string
	dark      bool

	mu      sync.Mutex
	looked  bool
	session *domain.Session
}

// Conn is the backend connection carrying the browser's cookies.
func (a *AppContext) Conn() *api.Conn { return a.conn }

// VisitorID is the anonymous id of the browser.
func (a *AppContext) VisitorID() string { return a.visitorID }

// Session returns the logged-in user, asking the backend at most once per
// request. Nil means nobody is logged in.
func (a *AppContext) Session(ctx context.Context) *domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.looked {
		a.session = a.pages.auth.Session(ctx, a.conn)
		a.looked = true
	}
	return a.session
}

// RefreshAuth asks the backend again, replacing the cached session.
func (a *AppContext) RefreshAuth(ctx context.Context) *domain.Session {
	sess := a.pages.auth.Session(ctx, a.conn)
	a.mu.Lock()
	a.session, a.looked = sess, true
	a.mu.Unlock()
	return sess
}

// OrdersOwner is the key of this visitor's cached order list.
func (a *AppContext) OrdersOwner(ctx context.Context) string {
	return service.OrdersOwner(a.visitorID, a.Session(ctx))
}

// Logout ends the backend session and clears the cached one.
func (a *AppContext) Logout(ctx context.Context) error {
	if err := a.pages.auth.Logout(ctx, a.conn, a.visitorID, a.OrdersOwner(ctx)); err != nil {
		return err
	}
	a.mu.Lock()
	a.session, a.looked = nil, true
	a.mu.Unlock()
	return nil
}

// Flash queues a notification for the next rendered page.
func (a *AppContext) Flash(ctx context.Context, kind domain.FlashKind, msg string) {
	if err := a.pages.state.PushFlash(ctx, a.visitorID, domain.Flash{Kind: kind, Message: msg}); err != nil {
		logger.FromContext(ctx).Warn("failed to queue flash",
			slog.String("message", msg),
			slog.String("error", err.Error()),
		)
	}
}

// Track publishes an activity event for the visitor.
func (a *AppContext) Track(ctx context.Context, kind string, data any) {
	a.pages.activity.Track(ctx, kind, data)
}

// Unauthorized redirects to the login page when err is a 401 from the
// backend and reports whether it did.
func (a *AppContext) Unauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apperrors.IsUnauthorized(err) {
		return false
	}
	a.Redirect(w, r, "/login")
	return true
}

// Redirect relays backend cookies and sends a 303 to target.
func (a *AppContext) Redirect(w http.ResponseWriter, r *http.Request, target string) {
	a.relayCookies(w)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Render fills the layout and renders page name. A template failure is
// logged and replaced by the error page.
func (a *AppContext) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, opts ...func(*view.Layout)) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	layout := view.Layout{
		Title:   title + " · " + siteName,
		Session: a.Session(ctx),
		Badge:   a.pages.cart.Badge(ctx, a.conn),
		Dark:    a.dark,
		Back:    r.URL.RequestURI(),
	}
	flashes, err := a.pages.state.PopFlashes(ctx, a.visitorID)
	if err != nil {
		log.Warn("failed to read flashes", slog.String("error", err.Error()))
	}
	layout.Flashes = flashes
	for _, opt := range opts {
		opt(&layout)
	}

	a.relayCookies(w)
	w.Header().Set("Accept-CH", colorSchemeHint)
	w.Header().Add("Vary", colorSchemeHint)

	if err := a.pages.view.Render(w, status, name, &view.Page{Layout: layout, Data: data}); err != nil {
		log.Error("failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		layout.Title = "Terjadi kesalahan · " + siteName
		a.pages.view.RenderError(w, http.StatusInternalServerError, &view.Page{Layout: layout, Data: view.ErrorData{
			Heading: "Terjadi kesalahan",
			Message: "Maaf, halaman tidak dapat ditampilkan. Silakan coba lagi.",
			BackURL: "/",
			Back:    "Kembali ke beranda",
		}})
	}
}

// WithRefresh schedules one delayed reload of target.
func WithRefresh(seconds int, target string) func(*view.Layout) {
	return func(l *view.Layout) {
		l.Refresh = &view.Refresh{Seconds: seconds, URL: target}
	}
}

func (a *AppContext) relayCookies(w http.ResponseWriter) {
	for _, c := range a.conn.SetCookies() {
		w.Header().Add("Set-Cookie", c)
	}
}
