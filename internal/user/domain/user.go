package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// User is owned by the profile service, the auction engine only reads it.
type User struct {
	ID          uuid.UUID
	DisplayName string
	IsAdmin     bool
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
