package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/akulov/points-api/internal/repo"
	"github.com/akulov/points-api/pkg/logging"
	"github.com/akulov/points-api/pkg/tokens"
)

// Context keys the auth gate populates for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxEmail    = "email"
	CtxRole     = "role"
	CtxToken    = "token"
)

type AuthMiddleware struct {
	Secret []byte
	Repo   *repo.GormRepo
}

func NewAuthMiddleware(secret []byte, r *repo.GormRepo) *AuthMiddleware {
	return &AuthMiddleware{Secret: secret, Repo: r}
}

// RequireAuth gates a request in a fixed order, terminal on first failure:
// bearer extraction, signature + expiry check, revocation lookup. Identity is
// attached from the verified claims only; the user row is never re-read here.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "auth")

		tokenStr, ok := bearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
		}

		claims, err := tokens.ClaimsFromToken(tokenStr, m.Secret)
		if err != nil {
			if errors.Is(err, tokens.ErrTokenExpired) {
				l.Warn("auth rejected", "status", 401, "reason", "token expired")
				return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
			}
			l.Warn("auth rejected", "status", 403, "reason", "invalid token")
			return echo.NewHTTPError(http.StatusForbidden, "Invalid token")
		}

		revoked, err := m.Repo.IsTokenRevoked(ctx, tokenStr)
		if err != nil {
			// A broken ledger lookup is not a bad credential: the caller
			// must be able to tell "unauthorized" from "could not check".
			l.Error("revocation check failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Authentication service error")
		}
		if revoked {
			l.Warn("auth rejected", "status", 401, "reason", "token invalidated")
			return echo.NewHTTPError(http.StatusUnauthorized, "Token invalidated")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxToken, tokenStr)

		return next(c)
	}
}

// RequireRole runs strictly after RequireAuth. Role insufficiency is a 401,
// not 403: the 403 code is reserved for tampered tokens and forbidden
// privileged actions.
func RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role != required {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
