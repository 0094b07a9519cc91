package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

// AuthBackend is the part of the backend that handles sessions.
type AuthBackend interface {
	Me(ctx context.Context) (*domain.Session, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Signup(ctx context.Context, creds domain.Credentials) error
	Logout(ctx context.Context) error
}

// SignupForm is the register page form.
type SignupForm struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"password_confirm"`
}

// AuthService implements login, signup, logout and the session lookup.
type AuthService struct {
	state  repository.UIStateRepository
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(state repository.UIStateRepository, logger *slog.Logger) *AuthService {
	return &AuthService{state: state, logger: logger}
}

// Session asks the backend who is logged in. Any failure means nobody.
func (s *AuthService) Session(ctx context.Context, b AuthBackend) *domain.Session {
	sess, err := b.Me(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "session lookup failed", slog.String("error", err.Error()))
		return nil
	}
	if !sess.Authenticated() {
		return nil
	}
	return sess
}

// Login validates the credentials and logs in. Any order list cached for
// the visitor before, or for this user on this browser, is evicted.
func (s *AuthService) Login(ctx context.Context, b AuthBackend, visitorID string, creds domain.Credentials) (*domain.Session, error) {
	if err := validator.Validate(creds); err != nil {
		return nil, err
	}
	sess, err := b.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.dropOrders(ctx, visitorID)
	if sess.Authenticated() {
		s.dropOrders(ctx, OrdersOwner(visitorID, sess))
	}
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", sess.UserID))
	return sess, nil
}

// Register checks the password confirmation before anything is sent.
func (s *AuthService) Register(ctx context.Context, b AuthBackend, form SignupForm) error {
	if form.Password != form.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if err := validator.Validate(form); err != nil {
		return err
	}
	if err := b.Signup(ctx, domain.Credentials{Email: form.Email, Password: form.Password}); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// Logout ends the backend session and forgets the orders cached for owner
// and for the bare visitor.
func (s *AuthService) Logout(ctx context.Context, b AuthBackend, visitorID, owner string) error {
	if err := b.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.dropOrders(ctx, visitorID)
	if owner != visitorID {
		s.dropOrders(ctx, owner)
	}
	return nil
}

func (s *AuthService) dropOrders(ctx context.Context, owner string) {
	if err := s.state.DropOrders(ctx, owner); err != nil {
		s.logger.WarnContext(ctx, "failed to evict orders cache", slog.String("error", err.Error()))
	}
}
