package ports

import (
	"context"

	"github.com/cityhealth/clinic-api/internal/core/domain"
)

// AuthRepository defines the interface for staff account persistence.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// LoginResult is returned by AuthService.Login on success.
type LoginResult struct {
	Token string
	// RedirectTo is the role-specific landing path the client should
	// navigate to after storing the session cookie.
	RedirectTo string
	User       *domain.User
}

// AuthService authenticates staff and issues session tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
