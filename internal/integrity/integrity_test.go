package integrity

import (
	"context"
	"testing"
	"time"

	"github.com/Orbeng/engser/internal/infra"
	"github.com/Orbeng/engser/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
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

func seedQuote(t *testing.T, db *gorm.DB, number, total string, items ...model.QuoteItem) *model.Quote {
	t.Helper()
	var company model.Company
	if err := db.First(&company).Error; err != nil {
		company = model.Company{
			Name: "Metalúrgica Alfa", CNPJ: "12.345.678/0001-90", ContactName: "Ana Souza",
			Email: "ana@alfa.com.br", Phone: "11999990000", Address: "Rua A, 1", City: "São Paulo", State: "SP",
		}
		require.NoError(t, db.Create(&company).Error)
	}
	q := &model.Quote{
		QuoteNumber: number, Title: "Orçamento", Description: "Descrição do orçamento",
		IssueDate: time.Now(), ValidUntil: time.Now().AddDate(0, 1, 0), CompanyID: company.ID,
		TotalValue: decimal.RequireFromString(total), Status: model.QuotePending,
	}
	require.NoError(t, db.Omit("Company", "Items").Create(q).Error)
	for i := range items {
		items[i].QuoteID = q.ID
		items[i].Position = i
		require.NoError(t, db.Omit("Service").Create(&items[i]).Error)
	}
	return q
}

func item(qty int, unit, total string) model.QuoteItem {
	return model.QuoteItem{
		Description: "Linha", Quantity: qty,
		UnitValue: decimal.RequireFromString(unit), TotalValue: decimal.RequireFromString(total),
	}
}

func TestCheck_Clean(t *testing.T) {
	db := newTestDB(t)
	seedQuote(t, db, "ORC-1", "250.00", item(2, "100.00", "200.00"), item(1, "50.00", "50.00"))
	seedQuote(t, db, "ORC-2", "80.00") // no items: total is trusted

	rep, err := Check(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, rep.OK(), "%+v", rep)
}

func TestCheck_Findings(t *testing.T) {
	db := newTestDB(t)
	bad := seedQuote(t, db, "ORC-1", "999.00", item(2, "100.00", "200.00"))
	seedQuote(t, db, "ORC-2", "150.00", item(3, "50.00", "100.00"), item(1, "50.00", "50.00"))

	rep, err := Check(context.Background(), db)
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Empty(t, rep.MissingTables)

	require.Len(t, rep.Quotes, 1)
	assert.Equal(t, bad.ID, rep.Quotes[0].QuoteID)
	assert.Equal(t, "ORC-1", rep.Quotes[0].QuoteNumber)
	assert.True(t, rep.Quotes[0].ItemsSum.Equal(decimal.RequireFromString("200")))

	// ORC-2 sums to its total but its first line is wrong
	require.Len(t, rep.Items, 1)
	assert.Equal(t, 3, rep.Items[0].Quantity)
}

func TestCheck_MissingTable(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrator().DropTable("quote_items"))

	rep, err := Check(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"quote_items"}, rep.MissingTables)
	assert.False(t, rep.OK())
}
