package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTotalMismatch is returned by Update when a new quote total does not
// match the sum of the stored line totals. The transaction is rolled back.
var ErrTotalMismatch = errors.New("quote total does not match item totals")

// ErrDateOrder is returned by Update when the resulting validity date would
// precede the issue date. The transaction is rolled back.
var ErrDateOrder = errors.New("quote valid_until precedes issue_date")

// QuoteUpdate describes one atomic change to a quote aggregate.
type QuoteUpdate struct {
	// Fields maps column names to new values. Empty means only updated_at
	// is touched.
	Fields map[string]interface{}
	// Items, when non-nil, replaces the whole item set (an empty slice
	// removes every item). Nil leaves stored items untouched.
	Items *[]model.QuoteItem
	// VerifyTotal makes Update compare Fields["total_value"] against the
	// stored line totals. Only meaningful when Items is nil.
	VerifyTotal bool
}

// QuoteRepository owns the quote aggregate: every write that touches a quote
// and its items runs inside a single transaction.
type QuoteRepository interface {
	Create(ctx context.Context, q *model.Quote, items []model.QuoteItem) error
	Update(ctx context.Context, id uuid.UUID, upd QuoteUpdate) (*model.Quote, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, filter dto.ListFilter) ([]model.Quote, int64, error)
	Count(ctx context.Context) (int64, error)
}

// itemTotals aggregates the stored lines of one quote.
type itemTotals struct {
	Sum   decimal.Decimal
	Count int64
}

type quoteRepo struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) QuoteRepository { return &quoteRepo{db: db} }

// Create inserts the quote row and its items in one transaction. q.QuoteNumber
// must already be set; a collision surfaces as gorm.ErrDuplicatedKey and
// nothing is persisted. On success q.Items holds the inserted rows.
func (r *quoteRepo) Create(ctx context.Context, q *model.Quote, items []model.QuoteItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return err
		}
		if err := insertItems(tx, q.ID, items); err != nil {
			return err
		}
		q.Items = items
		return nil
	})
}

// Update applies upd atomically and returns the reloaded aggregate.
// gorm.ErrRecordNotFound is returned when no quote has the given id.
func (r *quoteRepo) Update(ctx context.Context, id uuid.UUID, upd QuoteUpdate) (*model.Quote, error) {
	var out *model.Quote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := make(map[string]interface{}, len(upd.Fields)+1)
		for k, v := range upd.Fields {
			fields[k] = v
		}
		fields["updated_at"] = time.Now()

		res := tx.Model(&model.Quote{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := checkDateOrder(tx, id); err != nil {
			return err
		}

		if upd.Items != nil {
			if err := tx.Where("quote_id = ?", id).Delete(&model.QuoteItem{}).Error; err != nil {
				return err
			}
			if err := insertItems(tx, id, *upd.Items); err != nil {
				return err
			}
		} else if total, ok := upd.Fields["total_value"].(decimal.Decimal); ok && upd.VerifyTotal {
			stored, err := sumItems(tx, id)
			if err != nil {
				return err
			}
			if stored.Count > 0 && !stored.Sum.Round(2).Equal(total.Round(2)) {
				return ErrTotalMismatch
			}
		}

		q, err := findAggregate(tx, id)
		if err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the items and then the quote. The returned quote carries
// only the identity (id and number) of the deleted row.
func (r *quoteRepo) Delete(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var identity model.Quote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "quote_number").First(&identity, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&model.QuoteItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Quote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *quoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	return findAggregate(r.db.WithContext(ctx), id)
}

func (r *quoteRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Quote{}).Count(&n).Error
	return n, err
}

// ── List ─────────────────────────────────────────────────────────────────────

// quoteListRow is one row of the quotes ⟕ companies join.
type quoteListRow struct {
	ID          uuid.UUID       `gorm:"column:id"`
	QuoteNumber string          `gorm:"column:quote_number"`
	Title       string          `gorm:"column:title"`
	Description string          `gorm:"column:description"`
	IssueDate   time.Time       `gorm:"column:issue_date"`
	ValidUntil  time.Time       `gorm:"column:valid_until"`
	CompanyID   uuid.UUID       `gorm:"column:company_id"`
	TotalValue  decimal.Decimal `gorm:"column:total_value"`
	Status      string          `gorm:"column:status"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`

	CompanyRefID       *uuid.UUID `gorm:"column:c_id"`
	CompanyName        *string    `gorm:"column:c_name"`
	CompanyCNPJ        *string    `gorm:"column:c_cnpj"`
	CompanyContactName *string    `gorm:"column:c_contact_name"`
	CompanyEmail       *string    `gorm:"column:c_email"`
	CompanyCity        *string    `gorm:"column:c_city"`
	CompanyState       *string    `gorm:"column:c_state"`
}

const quoteListColumns = `quotes.id, quotes.quote_number, quotes.title, quotes.description,
	quotes.issue_date, quotes.valid_until, quotes.company_id, quotes.total_value,
	quotes.status, quotes.created_at, quotes.updated_at,
	companies.id AS c_id, companies.name AS c_name, companies.cnpj AS c_cnpj,
	companies.contact_name AS c_contact_name, companies.email AS c_email,
	companies.city AS c_city, companies.state AS c_state`

func (r *quoteRepo) List(ctx context.Context, filter dto.ListFilter) ([]model.Quote, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Table("quotes").
			Joins("LEFT JOIN companies ON companies.id = quotes.company_id")
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where(
				"LOWER(quotes.quote_number) LIKE ? ESCAPE '\\' OR LOWER(quotes.title) LIKE ? ESCAPE '\\' OR LOWER(companies.name) LIKE ? ESCAPE '\\'",
				p, p, p,
			)
		}
		if !isAllStatuses(filter.Status) {
			q = q.Where("quotes.status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := base().Select("COUNT(DISTINCT quotes.id)").Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []quoteListRow
	err := base().Select(quoteListColumns).
		Order("quotes.created_at DESC").Order("quotes.id DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return reshapeQuoteRows(rows), total, nil
}

// reshapeQuoteRows folds join rows into one quote per id, keeping first-seen
// order. A row without a matching company yields a quote with nil Company.
func reshapeQuoteRows(rows []quoteListRow) []model.Quote {
	out := make([]model.Quote, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.ID]; dup {
			continue
		}
		seen[row.ID] = struct{}{}

		q := model.Quote{
			ID:          row.ID,
			QuoteNumber: row.QuoteNumber,
			Title:       row.Title,
			Description: row.Description,
			IssueDate:   row.IssueDate,
			ValidUntil:  row.ValidUntil,
			CompanyID:   row.CompanyID,
			TotalValue:  row.TotalValue,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		if row.CompanyRefID != nil {
			q.Company = &model.Company{
				ID:          *row.CompanyRefID,
				Name:        deref(row.CompanyName),
				CNPJ:        deref(row.CompanyCNPJ),
				ContactName: deref(row.CompanyContactName),
				Email:       deref(row.CompanyEmail),
				City:        deref(row.CompanyCity),
				State:       deref(row.CompanyState),
			}
		}
		out = append(out, q)
	}
	return out
}

// ── helpers ──────────────────────────────────────────────────────────────────

func insertItems(tx *gorm.DB, quoteID uuid.UUID, items []model.QuoteItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QuoteID = quoteID
		items[i].Position = i
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

// checkDateOrder re-reads the stored dates after an update.
func checkDateOrder(db *gorm.DB, quoteID uuid.UUID) error {
	var row struct {
		IssueDate  time.Time
		ValidUntil time.Time
	}
	err := db.Model(&model.Quote{}).Select("issue_date", "valid_until").
		Where("id = ?", quoteID).Take(&row).Error
	if err != nil {
		return err
	}
	if row.ValidUntil.Before(row.IssueDate) {
		return ErrDateOrder
	}
	return nil
}

// sumItems totals the stored lines of a quote. db is the open transaction
// when called from a write path.
func sumItems(db *gorm.DB, quoteID uuid.UUID) (itemTotals, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := db.Model(&model.QuoteItem{}).
		Select("COALESCE(SUM(total_value), 0) AS total, COUNT(*) AS count").
		Where("quote_id = ?", quoteID).
		Scan(&row).Error
	return itemTotals{Sum: row.Total, Count: row.Count}, err
}

func findAggregate(db *gorm.DB, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	err := db.
		Preload("Company").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		Preload("Items.Service").
		First(&q, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
