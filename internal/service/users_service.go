package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat/backend/internal/auth"
	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/models"
)

const minPasswordLength = 8

// userStore is the repository surface the users service needs.
type userStore interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UsersService handles signup, login, and profile lookup.
type UsersService struct {
	users     userStore
	jwtSecret []byte
	jwtTTL    time.Duration
	logger    *slog.Logger
}

// NewUsersService creates the user account service.
func NewUsersService(users userStore, jwtSecret []byte, jwtTTL time.Duration, logger *slog.Logger) *UsersService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UsersService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
	}
}

// Signup creates an account and returns the user with a signed token.
func (s *UsersService) Signup(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", docerrors.NewValidationError("email", "invalid email address")
	}

	if len(password) < minPasswordLength {
		return nil, "", docerrors.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := auth.SignToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("signup: account created", "user_id", user.ID)

	return user, token, nil
}

// Login verifies credentials and returns the user with a signed token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *UsersService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, docerrors.ErrNotFound) {
			return nil, "", docerrors.NewValidationError("credentials", "invalid email or password")
		}

		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", docerrors.NewValidationError("credentials", "invalid email or password")
	}

	token, err := auth.SignToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	return user, token, nil
}

// GetByID returns the user profile.
func (s *UsersService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
