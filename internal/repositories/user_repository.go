package repositories

import (
	"context"
	"errors"

	"ledgerpay/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

// UserRepository is the read side of the account collaborator plus the
// create path used by the seed command.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// GetByID returns the user even when suspended or deleted; callers decide.
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
}
