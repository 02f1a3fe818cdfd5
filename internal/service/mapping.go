package service

import (
	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"
)

func companyToResponse(c *model.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		CNPJ:        c.CNPJ,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func companyToSummary(c *model.Company) *dto.CompanySummary {
	if c == nil {
		return nil
	}
	return &dto.CompanySummary{
		ID:          c.ID,
		Name:        c.Name,
		CNPJ:        c.CNPJ,
		ContactName: c.ContactName,
		Email:       c.Email,
		City:        c.City,
		State:       c.State,
	}
}

func serviceToResponse(s *model.Service) *dto.ServiceResponse {
	if s == nil {
		return nil
	}
	return &dto.ServiceResponse{
		ID:          s.ID,
		ART:         s.ART,
		Description: s.Description,
		ServiceDate: s.ServiceDate,
		ExpiryDate:  s.ExpiryDate,
		Value:       s.Value,
		Status:      s.Status,
		Notes:       s.Notes,
		CompanyID:   s.CompanyID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Company:     companyToResponse(s.Company),
	}
}

func quoteToResponse(q *model.Quote) *dto.QuoteResponse {
	resp := &dto.QuoteResponse{
		ID:          q.ID,
		QuoteNumber: q.QuoteNumber,
		Title:       q.Title,
		Description: q.Description,
		IssueDate:   q.IssueDate,
		ValidUntil:  q.ValidUntil,
		CompanyID:   q.CompanyID,
		TotalValue:  q.TotalValue,
		Status:      q.Status,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		Company:     companyToResponse(q.Company),
		Items:       make([]dto.QuoteItemResponse, len(q.Items)),
	}
	for i, it := range q.Items {
		resp.Items[i] = dto.QuoteItemResponse{
			ID:          it.ID,
			QuoteID:     it.QuoteID,
			ServiceID:   it.ServiceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitValue:   it.UnitValue,
			TotalValue:  it.TotalValue,
			CreatedAt:   it.CreatedAt,
			UpdatedAt:   it.UpdatedAt,
			Service:     serviceToResponse(it.Service),
		}
	}
	return resp
}

func quoteToListItem(q *model.Quote) dto.QuoteListItem {
	return dto.QuoteListItem{
		ID:          q.ID,
		QuoteNumber: q.QuoteNumber,
		Title:       q.Title,
		Description: q.Description,
		IssueDate:   q.IssueDate,
		ValidUntil:  q.ValidUntil,
		CompanyID:   q.CompanyID,
		TotalValue:  q.TotalValue,
		Status:      q.Status,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		Company:     companyToSummary(q.Company),
	}
}

// normalizeFilter applies the page defaults and the page size cap.
func normalizeFilter(f dto.ListFilter) dto.ListFilter {
	if f.Page < 1 {
		f.Page = dto.DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = dto.DefaultPageSize
	}
	if f.PageSize > dto.MaxPageSize {
		f.PageSize = dto.MaxPageSize
	}
	return f
}
