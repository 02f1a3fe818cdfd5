package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateServiceRequest struct {
	ART         string          `json:"art"         validate:"required,min=2"`
	Description string          `json:"description" validate:"required,min=5"`
	ServiceDate time.Time       `json:"serviceDate" validate:"required"`
	ExpiryDate  time.Time       `json:"expiryDate"  validate:"required"`
	Value       decimal.Decimal `json:"value"       validate:"required,gt=0"`
	Status      string          `json:"status"      validate:"required,oneof=scheduled in_progress completed canceled"`
	Notes       *string         `json:"notes"`
	CompanyID   string          `json:"companyId"   validate:"required,uuid"`
}

type UpdateServiceRequest struct {
	ART         *string          `json:"art"         validate:"omitempty,min=2"`
	Description *string          `json:"description" validate:"omitempty,min=5"`
	ServiceDate *time.Time       `json:"serviceDate"`
	ExpiryDate  *time.Time       `json:"expiryDate"`
	Value       *decimal.Decimal `json:"value"       validate:"omitempty,gt=0"`
	Status      *string          `json:"status"      validate:"omitempty,oneof=scheduled in_progress completed canceled"`
	Notes       *string          `json:"notes"`
	CompanyID   *string          `json:"companyId"   validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ServiceResponse struct {
	ID          uuid.UUID        `json:"id"`
	ART         string           `json:"art"`
	Description string           `json:"description"`
	ServiceDate time.Time        `json:"serviceDate"`
	ExpiryDate  time.Time        `json:"expiryDate"`
	Value       decimal.Decimal  `json:"value"`
	Status      string           `json:"status"`
	Notes       *string          `json:"notes"`
	CompanyID   uuid.UUID        `json:"companyId"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Company     *CompanyResponse `json:"company,omitempty"`
}

type ServiceListResponse struct {
	Services    []ServiceResponse `json:"services"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	TotalCount  int64             `json:"totalCount"`
}
