package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a client organization. CNPJ is the Brazilian tax id and is unique.
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"index;not null"`
	CNPJ        string    `gorm:"column:cnpj;uniqueIndex;not null"`
	ContactName string    `gorm:"not null"`
	Email       string    `gorm:"not null"`
	Phone       string    `gorm:"not null"`
	Address     string    `gorm:"not null"`
	City        string    `gorm:"not null"`
	State       string    `gorm:"not null"`
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Company) TableName() string { return "companies" }

func (c *Company) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
