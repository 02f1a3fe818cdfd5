package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

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

func seedService(t *testing.T, db *gorm.DB, companyID uuid.UUID, art string) *model.Service {
	t.Helper()
	s := &model.Service{
		ART: art, Description: "Laudo de instalação elétrica", Status: model.ServiceScheduled,
		ServiceDate: time.Now(), ExpiryDate: time.Now().AddDate(0, 6, 0),
		Value: decimal.RequireFromString("1200.00"), CompanyID: companyID,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

// newQuote builds an unsaved quote; number defaults to a unique value.
func newQuote(companyID uuid.UUID, number, title string) *model.Quote {
	if number == "" {
		number = "ORC-T-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC()
	return &model.Quote{
		QuoteNumber: number,
		Title:       title,
		Description: "Proposta comercial",
		IssueDate:   now,
		ValidUntil:  now.AddDate(0, 0, 30),
		CompanyID:   companyID,
		TotalValue:  decimal.RequireFromString("100.00"),
		Status:      model.QuotePending,
	}
}

func item(desc string, qty int, unit string) model.QuoteItem {
	u := decimal.RequireFromString(unit)
	return model.QuoteItem{Description: desc, Quantity: qty, UnitValue: u, TotalValue: model.LineTotal(qty, u)}
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func createQuotes(t *testing.T, repo QuoteRepository, companyID uuid.UUID, n int) []*model.Quote {
	t.Helper()
	base := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
	out := make([]*model.Quote, 0, n)
	for i := 0; i < n; i++ {
		q := newQuote(companyID, fmt.Sprintf("ORC-LIST-%03d", i), fmt.Sprintf("Quote %02d", i))
		q.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(context.Background(), q, nil))
		out = append(out, q)
	}
	return out
}
