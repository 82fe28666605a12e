package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus is the account state reported by the account collaborator.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `json:"name"`
	Status       UserStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	IsDeleted    bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}

// CanTransact reports whether the user may move money.
func (u *User) CanTransact() bool {
	return !u.IsDeleted && u.Status == UserStatusActive
}
