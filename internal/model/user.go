package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User stores an operator of the system. Password holds a bcrypt hash.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username         string    `gorm:"uniqueIndex;not null"`
	PasswordHash     string    `gorm:"not null"`
	Name             string    `gorm:"not null"`
	Email            *string
	ResetToken       *string `gorm:"index"`
	ResetTokenExpiry *time.Time
	LastLogin        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
