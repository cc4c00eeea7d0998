package domain

import (
	"errors"
	"time"
)

// Roles are a closed set. Any dispatch on role must handle both values
// explicitly; an unknown role is always rejected.
const (
	RoleTechnician = "technician"
	RoleDentist    = "dentist"
)

var ErrMissingCredentials = errors.New("missing credentials")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

var ErrTokenMissing = errors.New("token missing")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenMalformed = errors.New("token malformed")

var ErrForbidden = errors.New("access forbidden")

// User models an authenticated actor in the system. Users are immutable after
// creation; the only write path is startup seeding.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the verified claim set extracted from a bearer token and
// attached to the request context by the auth middleware.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ValidRole reports whether role is one of the known capability classes.
func ValidRole(role string) bool {
	switch role {
	case RoleTechnician, RoleDentist:
		return true
	}
	return false
}
