// Package repository contains the PostgreSQL data access layer.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// UsersRepository handles data access for the users table.
type UsersRepository struct {
	db *pgxpool.Pool
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *pgxpool.Pool) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create inserts a new user. Returns a ConflictError when the email is already registered.
func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, docerrors.NewConflictError("email already registered")
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// GetByEmail returns the user with the given email, or a NotFoundError.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docerrors.NewNotFoundError("user", "")
		}

		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// GetByID returns the user with the given ID, or a NotFoundError.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User

	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docerrors.NewNotFoundError("user", "")
		}

		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}
