package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service status values.
const (
	ServiceScheduled  = "scheduled"
	ServiceInProgress = "in_progress"
	ServiceCompleted  = "completed"
	ServiceCanceled   = "canceled"
)

// Service is an engineering service rendered to a company. ART is the
// external registration code of the technical responsibility record.
type Service struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ART         string          `gorm:"column:art;not null"`
	Description string          `gorm:"not null"`
	ServiceDate time.Time       `gorm:"not null"`
	ExpiryDate  time.Time       `gorm:"index;not null"`
	Value       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status      string          `gorm:"type:varchar(20);index;not null"`
	Notes       *string
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}

func (Service) TableName() string { return "services" }

func (s *Service) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
