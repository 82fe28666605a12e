package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.byEmail[user.Email]; ok {
		return repositories.ErrEmailTaken
	}
	r.s.users[user.ID] = *user
	r.s.byEmail[user.Email] = user.ID
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u := r.s.users[id]
	if u.IsDeleted {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}
