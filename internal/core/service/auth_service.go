package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// bcryptCost is tuned for interactive login latency.
const bcryptCost = 10

// Seeded development accounts, created only when the user store is empty.
var defaultUsers = []struct {
	Email    string
	Password string
	Role     string
}{
	{Email: "dentist@oralvis.com", Password: "dentist123", Role: domain.RoleDentist},
	{Email: "technician@oralvis.com", Password: "technician123", Role: domain.RoleTechnician},
}

// AuthService implements credential verification and account seeding.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// Login looks the user up by case-insensitive email and compares the bcrypt
// hash. A failed lookup and a failed comparison produce the same error so the
// response never reveals whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, domain.ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// SeedDefaultUsers creates the two fixed development accounts when the user
// store is empty. This is a development convenience, not a production
// posture; the warning it logs should be heeded in any real deployment.
func (s *AuthService) SeedDefaultUsers(ctx context.Context) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, seed := range defaultUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcryptCost)
		if err != nil {
			return err
		}
		if _, err := s.users.Create(ctx, &domain.User{
			Email:        seed.Email,
			PasswordHash: string(hash),
			Role:         seed.Role,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
	}

	s.log.Warn().Msg("seeded default accounts with known credentials; rotate them before exposing this instance")
	return nil
}
