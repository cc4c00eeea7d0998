package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/oralvis/oralvis-api/internal/core/domain"
)

func TestRBAC_AllowsPermittedRole(t *testing.T) {
	c, _ := newAuthContext("")
	c.Set(CtxRole, domain.RoleDentist)

	nextCalled := false
	handler := RBAC(domain.RoleDentist)(func(echo.Context) error {
		nextCalled = true
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !nextCalled {
		t.Fatalf("next handler was not invoked")
	}
}

func TestRBAC_ForbidsOtherRole(t *testing.T) {
	c, _ := newAuthContext("")
	c.Set(CtxRole, domain.RoleTechnician)

	handler := RBAC(domain.RoleDentist)(func(echo.Context) error {
		t.Fatalf("next handler must not run")
		return nil
	})

	if code := httpStatus(t, handler(c)); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRBAC_MissingRoleFailsClosed(t *testing.T) {
	c, _ := newAuthContext("")

	handler := RBAC(domain.RoleDentist)(func(echo.Context) error {
		t.Fatalf("next handler must not run")
		return nil
	})

	if code := httpStatus(t, handler(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
