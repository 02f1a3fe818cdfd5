package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/infra"
	"github.com/Orbeng/engser/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedCompany(t *testing.T, db *gorm.DB, name, cnpj string) *model.Company {
	t.Helper()
	c := &model.Company{
		Name: name, CNPJ: cnpj, ContactName: "Ana Souza", Email: "contato@example.com",
		Phone: "11999990000", Address: "Rua das Flores, 100", City: "São Paulo", State: "SP",
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedService(t *testing.T, db *gorm.DB, companyID uuid.UUID, status string, expiry time.Time) *model.Service {
	t.Helper()
	s := &model.Service{
		ART: "ART-" + uuid.NewString()[:6], Description: "Laudo técnico de instalação", Status: status,
		ServiceDate: time.Now(), ExpiryDate: expiry,
		Value: decimal.RequireFromString("1000.00"), CompanyID: companyID,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

func createRequest(companyID uuid.UUID, total string, items ...dto.QuoteItemRequest) dto.CreateQuoteRequest {
	issue := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	return dto.CreateQuoteRequest{
		Quote: dto.QuoteFields{
			Title:       "Reforma elétrica",
			Description: "Reforma completa do quadro elétrico",
			IssueDate:   issue,
			ValidUntil:  issue.AddDate(0, 0, 30),
			CompanyID:   companyID.String(),
			TotalValue:  dec(total),
		},
		Items: items,
	}
}

// fixedNumbers hands out a scripted sequence, repeating the last entry.
type fixedNumbers struct {
	mu    sync.Mutex
	seq   []string
	calls int
}

func (f *fixedNumbers) Next() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.seq) {
		i = len(f.seq) - 1
	}
	f.calls++
	return f.seq[i]
}

type countingInvalidator struct {
	mu sync.Mutex
	n  int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
