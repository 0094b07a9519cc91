package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// VisitorCookie is the name of the signed visitor token cookie.
const VisitorCookie = "sf_visitor"

const visitorIssuer = "storefront"

// VisitorConfig configures the visitor token cookie.
type VisitorConfig struct {
	Secret string
	Secure bool
	TTL    time.Duration
}

// Visitor returns middleware that gives every browser a stable anonymous id.
// The id is the subject of an HS256 token kept in a cookie. A missing,
// expired or tampered token is replaced by a new visitor. The id is
// available through logger.VisitorIDFromContext.
func Visitor(cfg VisitorConfig, log *slog.Logger) func(http.Handler) http.Handler {
	if cfg.TTL <= 0 {
		cfg.TTL = 365 * 24 * time.Hour
	}
	key := []byte(cfg.Secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, exp, err := parseVisitor(r, key)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					log.Warn("invalid visitor token",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
				id = uuid.NewString()
			}

			if err != nil || time.Until(exp) < cfg.TTL/2 {
				token, signErr := signVisitor(id, cfg.TTL, key)
				if signErr != nil {
					log.Error("failed to sign visitor token", slog.String("error", signErr.Error()))
				} else {
					http.SetCookie(w, &http.Cookie{
						Name:     VisitorCookie,
						Value:    token,
						Path:     "/",
						MaxAge:   int(cfg.TTL.Seconds()),
						HttpOnly: true,
						Secure:   cfg.Secure,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}

			ctx := logger.WithVisitorID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseVisitor(r *http.Request, key []byte) (string, time.Time, error) {
	ck, err := r.Cookie(VisitorCookie)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(ck.Value, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return key, nil
	}, jwt.WithIssuer(visitorIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", time.Time{}, err
	}
	if !token.Valid {
		return "", time.Time{}, jwt.ErrTokenInvalidClaims
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", time.Time{}, jwt.ErrTokenInvalidSubject
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

func signVisitor(id string, ttl time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    visitorIssuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
