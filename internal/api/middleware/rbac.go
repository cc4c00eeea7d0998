package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RBAC enforces the endpoint's declared role allow-list against the identity
// attached by Auth. An absent role means Auth never ran: fail closed with 401
// rather than assume any default. The 403 message names both the required
// and the actual role; roles are not sensitive here.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf(
					"access restricted to role %s; caller has role %q",
					strings.Join(allowedRoles, " or "), role))
			}
			return next(c)
		}
	}
}
