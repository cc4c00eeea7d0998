package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// Context keys under which the verified identity is stored.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// Auth verifies the bearer token through the token service and injects the
// verified identity into the request context. No protected handler runs
// without passing through here first.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			identity, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxUserID, identity.ID)
			c.Set(CtxEmail, identity.Email)
			c.Set(CtxRole, identity.Role)

			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header. It fails
// with domain.ErrTokenMissing when the header is absent or not bearer-shaped.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrTokenMissing
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrTokenMissing
	}
	return parts[1], nil
}
