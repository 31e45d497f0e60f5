package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
