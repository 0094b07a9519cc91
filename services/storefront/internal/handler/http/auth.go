package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/activity"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

// AuthData is the login and register page model. Passwords are never
// echoed back.
type AuthData struct {
	Email string
}

// AuthHandler serves the login, register and logout actions.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ac.Render(w, r, http.StatusOK, view.PageLogin, "Masuk", AuthData{})
}

// Login handles POST /login. The backend's session cookie is relayed with
// the redirect.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	creds := domain.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	sess, err := h.auth.Login(ctx, ac.Conn(), ac.VisitorID(), creds)
	if err != nil {
		logger.FromContext(ctx).Info("login failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Login gagal")
		ac.Render(w, r, http.StatusOK, view.PageLogin, "Masuk", AuthData{Email: creds.Email})
		return
	}

	ac.Track(ctx, activity.UserLoggedIn, activity.UserEvent{UserID: sess.UserID})
	ac.RefreshAuth(ctx)
	ac.Redirect(w, r, "/")
}

// RegisterForm handles GET /register.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ac.Render(w, r, http.StatusOK, view.PageRegister, "Daftar", AuthData{})
}

// Register handles POST /register. A password mismatch never reaches the
// backend.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	form := service.SignupForm{
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_confirm"),
	}

	err := h.auth.Register(ctx, ac.Conn(), form)
	switch {
	case err == nil:
		ac.Track(ctx, activity.UserSignedUp, activity.UserEvent{})
		ac.Flash(ctx, domain.FlashSuccess, "Daftar berhasil. Cek email konfirmasi.")
		ac.Redirect(w, r, "/login")
		return
	case errors.Is(err, service.ErrPasswordMismatch):
		ac.Flash(ctx, domain.FlashError, "Password tidak cocok")
	default:
		logger.FromContext(ctx).Info("signup failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal daftar")
	}
	ac.Render(w, r, http.StatusOK, view.PageRegister, "Daftar", AuthData{Email: form.Email})
}

// Logout handles POST /logout and always lands on the home page so every
// per-page value is rebuilt.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	if err := ac.Logout(ctx); err != nil {
		logger.FromContext(ctx).Warn("logout failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal logout")
	}
	ac.Redirect(w, r, "/")
}
