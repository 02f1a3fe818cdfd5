// Package integrity audits stored data for inconsistencies the write paths
// should never produce: missing tables, quotes whose total differs from the
// sum of their lines, and lines whose total differs from quantity × unit.
package integrity

import (
	"context"
	"fmt"

	"github.com/Orbeng/engser/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// tolerance absorbs float affinity on sqlite; amounts are stored with 2 places.
const tolerance = "0.005"

type QuoteMismatch struct {
	QuoteID     uuid.UUID
	QuoteNumber string
	Total       decimal.Decimal
	ItemsSum    decimal.Decimal
}

type ItemMismatch struct {
	ItemID     uuid.UUID
	QuoteID    uuid.UUID
	Quantity   int
	UnitValue  decimal.Decimal
	TotalValue decimal.Decimal
}

// Report lists every finding of one run.
type Report struct {
	MissingTables []string
	Quotes        []QuoteMismatch
	Items         []ItemMismatch
	OrphanItems   int64
}

// OK reports whether the run found nothing.
func (r *Report) OK() bool {
	return len(r.MissingTables) == 0 && len(r.Quotes) == 0 && len(r.Items) == 0 && r.OrphanItems == 0
}

// Check runs every audit. Row checks are skipped when tables are missing.
func Check(ctx context.Context, db *gorm.DB) (*Report, error) {
	db = db.WithContext(ctx)
	rep := &Report{}

	for _, table := range infra.ExpectedTables {
		if !db.Migrator().HasTable(table) {
			rep.MissingTables = append(rep.MissingTables, table)
		}
	}
	if len(rep.MissingTables) > 0 {
		return rep, nil
	}

	err := db.Raw(`
		SELECT q.id AS quote_id, q.quote_number, q.total_value AS total, SUM(i.total_value) AS items_sum
		FROM quotes q
		JOIN quote_items i ON i.quote_id = q.id
		GROUP BY q.id, q.quote_number, q.total_value
		HAVING ABS(q.total_value - SUM(i.total_value)) > ` + tolerance + `
		ORDER BY q.quote_number`).
		Scan(&rep.Quotes).Error
	if err != nil {
		return nil, fmt.Errorf("quote totals: %w", err)
	}

	err = db.Raw(`
		SELECT id AS item_id, quote_id, quantity, unit_value, total_value
		FROM quote_items
		WHERE ABS(quantity * unit_value - total_value) > ` + tolerance + `
		ORDER BY quote_id, position`).
		Scan(&rep.Items).Error
	if err != nil {
		return nil, fmt.Errorf("line totals: %w", err)
	}

	err = db.Raw(`
		SELECT COUNT(*) FROM quote_items i
		LEFT JOIN quotes q ON q.id = i.quote_id
		WHERE q.id IS NULL`).
		Scan(&rep.OrphanItems).Error
	if err != nil {
		return nil, fmt.Errorf("orphan items: %w", err)
	}
	return rep, nil
}
