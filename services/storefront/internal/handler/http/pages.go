package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/activity"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/api"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/middleware"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

// siteName is appended to every page title.
const siteName = "ShopEasy"

// LocalCookies are owned by the storefront and never forwarded upstream.
var LocalCookies = []string{middleware.VisitorCookie, ThemeCookie}

// PageFunc is a page or action handler. It receives the request's
// AppContext explicitly.
type PageFunc func(w http.ResponseWriter, r *http.Request, ac *AppContext)

// Pages builds an AppContext for every request and renders pages.
type Pages struct {
	client   *api.Client
	state    repository.UIStateRepository
	auth     *service.AuthService
	cart     *service.CartService
	view     *view.Renderer
	activity *activity.Tracker
	logger   *slog.Logger
}

// NewPages creates the shared page machinery. A nil tracker drops activity
// events.
func NewPages(
	client *api.Client,
	state repository.UIStateRepository,
	auth *service.AuthService,
	cart *service.CartService,
	renderer *view.Renderer,
	tracker *activity.Tracker,
	logger *slog.Logger,
) *Pages {
	return &Pages{
		client:   client,
		state:    state,
		auth:     auth,
		cart:     cart,
		view:     renderer,
		activity: tracker,
		logger:   logger,
	}
}

// maxFormBytes caps the size of a posted form.
const maxFormBytes = 1 << 20

// Handle adapts fn to an http.HandlerFunc. Posted forms are parsed before
// fn runs; an unreadable body is answered with 400.
func (p *Pages) Handle(fn PageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := p.newAppContext(r)
		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			if err := r.ParseForm(); err != nil {
				logger.FromContext(r.Context()).Info("bad form post", slog.String("error", err.Error()))
				ac.Render(w, r, http.StatusBadRequest, view.PageError, "Permintaan tidak valid", view.ErrorData{
					Heading: "Permintaan tidak valid",
					Message: "Formulir tidak dapat dibaca. Silakan coba lagi.",
					BackURL: "/",
					Back:    "Kembali ke beranda",
				})
				return
			}
		}
		fn(w, r, ac)
	}
}

func (p *Pages) newAppContext(r *http.Request) *AppContext {
	return &AppContext{
		pages:     p,
		conn:      p.client.Forward(api.ForwardableCookies(r.Cookies(), LocalCookies...)),
		visitorID: logger.VisitorIDFromContext(r.Context()),
		dark:      prefersDark(r),
	}
}

// NotFound renders the 404 page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	ac := p.newAppContext(r)
	ac.Render(w, r, http.StatusNotFound, view.PageError, "Halaman tidak ditemukan", view.ErrorData{
		Heading: "Halaman tidak ditemukan",
		Message: "Halaman yang Anda cari tidak ada.",
		BackURL: "/",
		Back:    "Kembali ke beranda",
	})
}
