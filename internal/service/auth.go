package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository"
)

// AuthService verifies credentials. Token issuance happens at the
// transport layer; this only answers "who is this".
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo, now: time.Now}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	fe := fieldErrors{}
	fe.required("email", email)
	fe.required("password", password)
	if err := fe.err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		// Same error for unknown email and wrong password.
		return nil, domain.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.Unauthenticated("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, domain.Unauthenticated("account is not active")
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("updating last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now
	return user, nil
}
