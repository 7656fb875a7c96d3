package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
	"github.com/cityhealth/clinic-api/internal/core/session"
)

// LoginThrottle abstracts the per-account attempt limiter (Redis).
type LoginThrottle interface {
	// Allow reports whether the account may attempt a login right now.
	Allow(ctx context.Context, key string) (bool, error)
	// RecordFailure counts one failed attempt against the account.
	RecordFailure(ctx context.Context, key string) error
}

// dummyHash is a bcrypt hash of equivalent cost to stored credentials.
// Login compares against it when the account does not exist so the request
// always pays the full hashing cost; response timing then cannot reveal
// whether an email is registered.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService implements staff login and account registration.
type AuthService struct {
	repo     ports.AuthRepository
	issuer   *session.Issuer
	throttle LoginThrottle
	log      zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, issuer *session.Issuer, throttle LoginThrottle, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, issuer: issuer, throttle: throttle, log: log}
}

// Login verifies the credentials and issues a signed session token together
// with the role's landing route. Unknown account, wrong password, and
// inactive account all surface as domain.ErrInvalidCredentials after the
// same hashing work.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			// Fail open: losing the limiter must not lock staff out.
			s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		} else if !allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		// Unknown account: burn the same hashing cost, then fail uniformly.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil || !user.Active {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(session.Session{
		SubjectID:  user.ID,
		Role:       user.Role,
		Name:       user.Name,
		FacilityID: user.FacilityID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue session token")
		return nil, domain.ErrSessionIssue
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")

	return &ports.LoginResult{
		Token:      token,
		RedirectTo: domain.RoleLandingRoute[user.Role],
		User:       user,
	}, nil
}

// Register creates a staff account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role domain.Role, facilityID string) (*domain.User, error) {
	if email == "" || password == "" || name == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		FacilityID:   facilityID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.repo.Create(ctx, user)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}
