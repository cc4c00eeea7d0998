package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oralvis/oralvis-api/internal/api/middleware"
	"github.com/oralvis/oralvis-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. An
// incomplete identity means the middleware never ran; handlers fail closed
// with 401 rather than assume any default role.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, _ := c.Get(middleware.CtxUserID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	if id == "" || role == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ := c.Get(middleware.CtxEmail).(string)

	return &domain.Identity{ID: id, Email: email, Role: role}, nil
}
