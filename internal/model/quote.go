package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote status values.
const (
	QuotePending  = "pending"
	QuoteApproved = "approved"
	QuoteRejected = "rejected"
)

// Quote is the aggregate root of a price proposal. It exclusively owns its
// Items; Company is only referenced. QuoteNumber is assigned once, server side.
type Quote struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuoteNumber string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	Title       string          `gorm:"not null"`
	Description string          `gorm:"not null"`
	IssueDate   time.Time       `gorm:"not null"`
	ValidUntil  time.Time       `gorm:"not null"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	TotalValue  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status      string          `gorm:"type:varchar(20);index;not null"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time

	Company *Company    `gorm:"foreignKey:CompanyID"`
	Items   []QuoteItem `gorm:"foreignKey:QuoteID"`
}

func (Quote) TableName() string { return "quotes" }

func (q *Quote) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

// QuoteItem is one line of a quote. ServiceID is optional: items may be
// ad-hoc lines not tied to a catalog service.
type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ServiceID   *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"not null"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitValue   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalValue  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Position    int             `gorm:"not null;default:0"` // submission order
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Service *Service `gorm:"foreignKey:ServiceID"`
}

func (QuoteItem) TableName() string { return "quote_items" }

func (i *QuoteItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal returns quantity × unit value rounded to cents.
func LineTotal(quantity int, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
