package dto

import (
	"time"

	"github.com/google/uuid"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCompanyRequest struct {
	Name        string  `json:"name"        validate:"required,min=2"`
	CNPJ        string  `json:"cnpj"        validate:"required,min=14,max=18"`
	ContactName string  `json:"contactName" validate:"required,min=2"`
	Email       string  `json:"email"       validate:"required,email"`
	Phone       string  `json:"phone"       validate:"required,min=10"`
	Address     string  `json:"address"     validate:"required,min=5"`
	City        string  `json:"city"        validate:"required,min=2"`
	State       string  `json:"state"       validate:"required,min=2,max=2"`
	Notes       *string `json:"notes"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2"`
	CNPJ        *string `json:"cnpj"        validate:"omitempty,min=14,max=18"`
	ContactName *string `json:"contactName" validate:"omitempty,min=2"`
	Email       *string `json:"email"       validate:"omitempty,email"`
	Phone       *string `json:"phone"       validate:"omitempty,min=10"`
	Address     *string `json:"address"     validate:"omitempty,min=5"`
	City        *string `json:"city"        validate:"omitempty,min=2"`
	State       *string `json:"state"       validate:"omitempty,min=2,max=2"`
	Notes       *string `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CompanyResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CNPJ        string    `json:"cnpj"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CompanySummary is the company projection embedded in list rows.
type CompanySummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CNPJ        string    `json:"cnpj"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	City        string    `json:"city"`
	State       string    `json:"state"`
}

// CompanyOption feeds select inputs (GET /companies/all).
type CompanyOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CompanyListResponse struct {
	Companies   []CompanyResponse `json:"companies"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	TotalCount  int64             `json:"totalCount"`
}
