package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller resolved from a bearer token. It is
// derived per request and never persisted by this service.
type Identity struct {
	ID      string
	Subject string
	Name    string
}

// SubjectResolver maps a token subject claim to a known identity. Resolution
// failure means the token refers to nobody this service knows about and the
// request is rejected.
type SubjectResolver interface {
	ResolveSubject(ctx context.Context, subject string) (*Identity, error)
}

// Middleware authenticates every request from the Authorization bearer header.
// The token must be an HS256 JWT signed with secret, carry a subject claim,
// and the subject must resolve to a known identity. Any failure is a 401; the
// gate makes no role or permission distinctions beyond that.
func Middleware(secret []byte, resolver SubjectResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			ident, err := resolver.ResolveSubject(c.Request().Context(), claims.Subject)
			if err != nil || ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown subject")
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, ident)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// IdentityFromContext returns the authenticated identity, or nil outside the gate.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}
