package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Demo account credentials seeded on startup.
const (
	demoEmail    = "test@example.com"
	demoName     = "Test User"
	demoPassword = "test123"
)

// AuthService coordinates signup and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service and seeds the demo account if absent.
func NewAuthService(cfg config.Config, users repository.UserRepository, logger *zap.Logger) (*AuthService, error) {
	s := &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
	if err := s.seedDemoUser(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Signup creates a new account. Emails are matched case-sensitively against
// stored records; a duplicate fails with a conflict.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("Email already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login authenticates a user. Unknown email and wrong password fail with the
// same error so callers cannot tell the two apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("Invalid email or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("Invalid email or password")
	}
	return user, nil
}

// IssueToken signs a bearer token for API clients.
func (s *AuthService) IssueToken(user *domain.User) (string, time.Time, error) {
	return s.tokenMgr.GenerateToken(user.ID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) seedDemoUser(ctx context.Context) error {
	if _, err := s.users.GetByEmail(ctx, demoEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(demoPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user := &domain.User{Email: demoEmail, Name: demoName, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("seeded demo account", zap.String("email", demoEmail))
	return nil
}
