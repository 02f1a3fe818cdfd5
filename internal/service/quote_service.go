package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/metrics"
	"github.com/Orbeng/engser/internal/model"
	"github.com/Orbeng/engser/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const msgQuoteNotFound = "Orçamento não encontrado"

type QuoteService interface {
	List(ctx context.Context, filter dto.ListFilter) (*dto.QuoteListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.QuoteResponse, error)
	Create(ctx context.Context, req dto.CreateQuoteRequest) (*dto.QuoteResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateQuoteRequest) (*dto.QuoteResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteQuoteResponse, error)
}

// Invalidator drops derived cached data after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type quoteService struct {
	repo     repository.QuoteRepository
	numbers  NumberSource
	attempts int
	cache    Invalidator
}

// NewQuoteService wires the quote aggregate service. attempts bounds how many
// quote numbers are tried per create (values below 1 mean 1). cache may be nil.
func NewQuoteService(repo repository.QuoteRepository, numbers NumberSource, attempts int, cache Invalidator) QuoteService {
	if attempts < 1 {
		attempts = 1
	}
	return &quoteService{repo: repo, numbers: numbers, attempts: attempts, cache: cache}
}

func (s *quoteService) List(ctx context.Context, filter dto.ListFilter) (*dto.QuoteListResponse, error) {
	filter = normalizeFilter(filter)
	quotes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		err = classify(err, msgQuoteNotFound)
		logFailure("quote.list", "", err)
		return nil, err
	}
	resp := &dto.QuoteListResponse{
		Quotes:      make([]dto.QuoteListItem, len(quotes)),
		TotalPages:  dto.TotalPages(total, filter.PageSize),
		CurrentPage: filter.Page,
		TotalCount:  total,
	}
	for i := range quotes {
		resp.Quotes[i] = quoteToListItem(&quotes[i])
	}
	return resp, nil
}

func (s *quoteService) Get(ctx context.Context, id uuid.UUID) (*dto.QuoteResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		err = classify(err, msgQuoteNotFound)
		logFailure("quote.get", id.String(), err)
		return nil, err
	}
	return quoteToResponse(q), nil
}

// ── Create ────────────────────────────────────────────────────────────────────
//   1. Resolve ids and compute line totals (outside TX)
//   2. Reject a total that differs from the item sum
//   3. Per attempt: fresh number, one TX for quote + items
//   4. Retry on number collision, then give up with a transient error

func (s *quoteService) Create(ctx context.Context, req dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	defer metrics.TrackQuoteOperation("create")()

	companyID, err := uuid.Parse(req.Quote.CompanyID)
	if err != nil {
		return nil, ValidationError("Empresa inválida", FieldError{Field: "quote.companyId", Message: "Identificador inválido"})
	}
	items, sum, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}
	total := req.Quote.TotalValue.Round(2)
	if len(items) > 0 && !sum.Equal(total) {
		return nil, totalMismatch(sum)
	}
	status := req.Quote.Status
	if status == "" {
		status = model.QuotePending
	}

	var q *model.Quote
	for attempt := 1; ; attempt++ {
		q = &model.Quote{
			QuoteNumber: s.numbers.Next(),
			Title:       req.Quote.Title,
			Description: req.Quote.Description,
			IssueDate:   req.Quote.IssueDate,
			ValidUntil:  req.Quote.ValidUntil,
			CompanyID:   companyID,
			TotalValue:  total,
			Status:      status,
		}
		err = s.repo.Create(ctx, q, cloneItems(items))
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			err = classify(err, msgQuoteNotFound)
			logFailure("quote.create", q.QuoteNumber, err)
			return nil, err
		}
		if attempt >= s.attempts {
			err = newError(KindTransient, "Não foi possível gerar um número de orçamento único, tente novamente", err)
			logFailure("quote.create", q.QuoteNumber, err)
			return nil, err
		}
		metrics.QuoteNumberRetries.Inc()
		log.Warn().Str("op", "quote.create").Str("quote_number", q.QuoteNumber).
			Int("attempt", attempt).Msg("quote number collision, retrying")
	}

	metrics.QuotesCreated.Inc()
	s.invalidate(ctx)
	log.Info().Str("quote_id", q.ID.String()).Str("quote_number", q.QuoteNumber).
		Int("items", len(items)).Msg("quote created")

	created, err := s.repo.FindByID(ctx, q.ID)
	if err != nil {
		err = classify(err, msgQuoteNotFound)
		logFailure("quote.create", q.ID.String(), err)
		return nil, err
	}
	return quoteToResponse(created), nil
}

// ── Update ────────────────────────────────────────────────────────────────────

func (s *quoteService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	defer metrics.TrackQuoteOperation("update")()

	upd, err := buildQuoteUpdate(req)
	if err != nil {
		return nil, err
	}
	q, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTotalMismatch):
			err = ValidationError("O valor total não corresponde à soma dos itens do orçamento",
				FieldError{Field: "quote.totalValue", Message: "Não corresponde à soma dos itens"})
		case errors.Is(err, repository.ErrDateOrder):
			err = dateOrderError()
		default:
			err = classify(err, msgQuoteNotFound)
		}
		logFailure("quote.update", id.String(), err)
		return nil, err
	}
	s.invalidate(ctx)
	log.Info().Str("quote_id", id.String()).Bool("items_replaced", upd.Items != nil).Msg("quote updated")
	return quoteToResponse(q), nil
}

func buildQuoteUpdate(req dto.UpdateQuoteRequest) (repository.QuoteUpdate, error) {
	c := req.Quote
	fields := map[string]interface{}{}
	if c.Title != nil {
		fields["title"] = *c.Title
	}
	if c.Description != nil {
		fields["description"] = *c.Description
	}
	if c.IssueDate != nil {
		fields["issue_date"] = *c.IssueDate
	}
	if c.ValidUntil != nil {
		fields["valid_until"] = *c.ValidUntil
	}
	if c.IssueDate != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.IssueDate) {
		return repository.QuoteUpdate{}, dateOrderError()
	}
	if c.CompanyID != nil {
		cid, err := uuid.Parse(*c.CompanyID)
		if err != nil {
			return repository.QuoteUpdate{}, ValidationError("Empresa inválida",
				FieldError{Field: "quote.companyId", Message: "Identificador inválido"})
		}
		fields["company_id"] = cid
	}
	if c.Status != nil {
		fields["status"] = *c.Status
	}

	upd := repository.QuoteUpdate{Fields: fields}
	switch {
	case req.Items != nil:
		items, sum, err := buildItems(*req.Items)
		if err != nil {
			return repository.QuoteUpdate{}, err
		}
		if len(items) > 0 {
			if c.TotalValue != nil && !c.TotalValue.Round(2).Equal(sum) {
				return repository.QuoteUpdate{}, totalMismatch(sum)
			}
			fields["total_value"] = sum
		} else if c.TotalValue != nil {
			fields["total_value"] = c.TotalValue.Round(2)
		}
		upd.Items = &items
	case c.TotalValue != nil:
		fields["total_value"] = c.TotalValue.Round(2)
		upd.VerifyTotal = true
	}
	return upd, nil
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (s *quoteService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteQuoteResponse, error) {
	defer metrics.TrackQuoteOperation("delete")()

	q, err := s.repo.Delete(ctx, id)
	if err != nil {
		err = classify(err, msgQuoteNotFound)
		logFailure("quote.delete", id.String(), err)
		return nil, err
	}
	s.invalidate(ctx)
	log.Info().Str("quote_id", id.String()).Str("quote_number", q.QuoteNumber).Msg("quote deleted")
	return &dto.DeleteQuoteResponse{
		Message:     "Orçamento excluído com sucesso",
		ID:          q.ID,
		QuoteNumber: q.QuoteNumber,
	}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *quoteService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// buildItems converts submitted lines into rows with server-computed line
// totals and returns their sum.
func buildItems(reqs []dto.QuoteItemRequest) ([]model.QuoteItem, decimal.Decimal, error) {
	items := make([]model.QuoteItem, 0, len(reqs))
	sum := decimal.Zero
	for i, r := range reqs {
		qty := 1
		if r.Quantity != nil {
			qty = *r.Quantity
		}
		if qty <= 0 {
			return nil, sum, ValidationError("Quantidade inválida",
				FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "Deve ser maior que zero"})
		}
		var serviceID *uuid.UUID
		if r.ServiceID != nil && *r.ServiceID != "" {
			sid, err := uuid.Parse(*r.ServiceID)
			if err != nil {
				return nil, sum, ValidationError("Serviço inválido",
					FieldError{Field: fmt.Sprintf("items[%d].serviceId", i), Message: "Identificador inválido"})
			}
			serviceID = &sid
		}
		unit := r.UnitValue.Round(2)
		line := model.LineTotal(qty, unit)
		sum = sum.Add(line)
		items = append(items, model.QuoteItem{
			ServiceID:   serviceID,
			Description: r.Description,
			Quantity:    qty,
			UnitValue:   unit,
			TotalValue:  line,
		})
	}
	return items, sum, nil
}

// cloneItems copies items with ids cleared so every attempt inserts fresh rows.
func cloneItems(items []model.QuoteItem) []model.QuoteItem {
	out := make([]model.QuoteItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].ID = uuid.Nil
	}
	return out
}

func dateOrderError() *Error {
	return ValidationError("Data de validade anterior à data de emissão",
		FieldError{Field: "quote.validUntil", Message: "Deve ser igual ou posterior à data de emissão"})
}

func totalMismatch(sum decimal.Decimal) *Error {
	return ValidationError(
		fmt.Sprintf("O valor total deve ser igual à soma dos itens (%s)", sum.StringFixed(2)),
		FieldError{Field: "quote.totalValue", Message: "Não corresponde à soma dos itens"},
	)
}
