package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// QuoteItemRequest is one submitted line. The line total is always computed
// server side; a client-sent total is ignored.
type QuoteItemRequest struct {
	ServiceID   *string         `json:"serviceId"   validate:"omitempty,uuid"`
	Description string          `json:"description" validate:"required,min=3"`
	Quantity    *int            `json:"quantity"    validate:"omitempty,gt=0"` // nil = 1
	UnitValue   decimal.Decimal `json:"unitValue"   validate:"required,gt=0"`
}

type QuoteFields struct {
	Title       string          `json:"title"       validate:"required,min=3"`
	Description string          `json:"description" validate:"required,min=5"`
	IssueDate   time.Time       `json:"issueDate"   validate:"required"`
	ValidUntil  time.Time       `json:"validUntil"  validate:"required,gtefield=IssueDate"`
	CompanyID   string          `json:"companyId"   validate:"required,uuid"`
	TotalValue  decimal.Decimal `json:"totalValue"  validate:"required,gt=0"`
	Status      string          `json:"status"      validate:"omitempty,oneof=pending approved rejected"` // empty = pending
}

// CreateQuoteRequest is the body of POST /quotes.
type CreateQuoteRequest struct {
	Quote QuoteFields        `json:"quote"`
	Items []QuoteItemRequest `json:"items" validate:"dive"`
}

// QuoteChanges holds the optional fields of an update. The quote number is
// deliberately absent: it cannot be changed.
type QuoteChanges struct {
	Title       *string          `json:"title"       validate:"omitempty,min=3"`
	Description *string          `json:"description" validate:"omitempty,min=5"`
	IssueDate   *time.Time       `json:"issueDate"`
	ValidUntil  *time.Time       `json:"validUntil"`
	CompanyID   *string          `json:"companyId"   validate:"omitempty,uuid"`
	TotalValue  *decimal.Decimal `json:"totalValue"  validate:"omitempty,gt=0"`
	Status      *string          `json:"status"      validate:"omitempty,oneof=pending approved rejected"`
}

// UpdateQuoteRequest is the body of PUT /quotes/:id. A nil Items leaves the
// stored items untouched; a non-nil (even empty) list replaces them all.
type UpdateQuoteRequest struct {
	Quote QuoteChanges        `json:"quote"`
	Items *[]QuoteItemRequest `json:"items" validate:"omitempty,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type QuoteItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	QuoteID     uuid.UUID        `json:"quoteId"`
	ServiceID   *uuid.UUID       `json:"serviceId"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	UnitValue   decimal.Decimal  `json:"unitValue"`
	TotalValue  decimal.Decimal  `json:"totalValue"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Service     *ServiceResponse `json:"service"`
}

// QuoteResponse is the full aggregate: quote fields, company and items.
type QuoteResponse struct {
	ID          uuid.UUID           `json:"id"`
	QuoteNumber string              `json:"quoteNumber"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	IssueDate   time.Time           `json:"issueDate"`
	ValidUntil  time.Time           `json:"validUntil"`
	CompanyID   uuid.UUID           `json:"companyId"`
	TotalValue  decimal.Decimal     `json:"totalValue"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Company     *CompanyResponse    `json:"company"`
	Items       []QuoteItemResponse `json:"items"`
}

// QuoteListItem is one row of GET /quotes, enriched with the company summary.
type QuoteListItem struct {
	ID          uuid.UUID       `json:"id"`
	QuoteNumber string          `json:"quoteNumber"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	IssueDate   time.Time       `json:"issueDate"`
	ValidUntil  time.Time       `json:"validUntil"`
	CompanyID   uuid.UUID       `json:"companyId"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Company     *CompanySummary `json:"company"`
}

type QuoteListResponse struct {
	Quotes      []QuoteListItem `json:"quotes"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	TotalCount  int64           `json:"totalCount"`
}

type DeleteQuoteResponse struct {
	Message     string    `json:"message"`
	ID          uuid.UUID `json:"id"`
	QuoteNumber string    `json:"quoteNumber"`
}
