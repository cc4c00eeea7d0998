package ports

import (
	"context"

	"github.com/oralvis/oralvis-api/internal/core/domain"
)

// AuthService implements the credential-based authentication flow.
type AuthService interface {
	// Login verifies email+password and returns a signed token and the user.
	// Lookup failure and hash mismatch both yield domain.ErrInvalidCredentials
	// so callers cannot enumerate accounts.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// SeedDefaultUsers creates the two fixed development accounts when the
	// user store is empty. A non-empty store is left untouched.
	SeedDefaultUsers(ctx context.Context) error
}

// TokenService issues and verifies signed, time-limited identity tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	// Verify fails with domain.ErrTokenMissing, domain.ErrTokenExpired or
	// domain.ErrTokenMalformed; expiry is always reported as expired, never
	// as malformed.
	Verify(token string) (*domain.Identity, error)
}
