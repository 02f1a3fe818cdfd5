package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"
	"github.com/Orbeng/engser/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuoteFixture(t *testing.T, numbers NumberSource, attempts int) (QuoteService, *gorm.DB, *model.Company, *countingInvalidator) {
	t.Helper()
	db := newTestDB(t)
	c := seedCompany(t, db, "Construtora Alfa", "11.111.111/0001-11")
	inv := &countingInvalidator{}
	if numbers == nil {
		numbers = NewClockNumberSource("ORC")
	}
	return NewQuoteService(repository.NewQuoteRepository(db), numbers, attempts, inv), db, c, inv
}

func countQuotes(t *testing.T, db *gorm.DB) (quotes, items int64) {
	t.Helper()
	require.NoError(t, db.Model(&model.Quote{}).Count(&quotes).Error)
	require.NoError(t, db.Model(&model.QuoteItem{}).Count(&items).Error)
	return quotes, items
}

func TestQuoteService_CreateComputesLineTotals(t *testing.T) {
	svc, db, c, inv := newQuoteFixture(t, nil, 2)

	resp, err := svc.Create(context.Background(), createRequest(c.ID, "750.50",
		dto.QuoteItemRequest{Description: "Projeto", Quantity: intp(1), UnitValue: dec("500.00")},
		dto.QuoteItemRequest{Description: "Instalação", UnitValue: dec("250.50")},
	))
	require.NoError(t, err)

	assert.Regexp(t, `^ORC-\d{8}-\d{8}$`, resp.QuoteNumber)
	assert.Equal(t, model.QuotePending, resp.Status)
	assert.True(t, resp.TotalValue.Equal(dec("750.50")))
	require.NotNil(t, resp.Company)
	assert.Equal(t, c.ID, resp.Company.ID)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 1, resp.Items[1].Quantity, "quantity defaults to 1")
	assert.True(t, resp.Items[0].TotalValue.Equal(dec("500.00")))
	assert.True(t, resp.Items[1].TotalValue.Equal(dec("250.50")))
	assert.Equal(t, 1, inv.count())

	quotes, items := countQuotes(t, db)
	assert.EqualValues(t, 1, quotes)
	assert.EqualValues(t, 2, items)
}

func TestQuoteService_CreateRejectsTotalMismatch(t *testing.T) {
	svc, db, c, _ := newQuoteFixture(t, nil, 2)

	_, err := svc.Create(context.Background(), createRequest(c.ID, "999.00",
		dto.QuoteItemRequest{Description: "Projeto", Quantity: intp(2), UnitValue: dec("100.00")},
	))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	quotes, _ := countQuotes(t, db)
	assert.Zero(t, quotes)
}

func TestQuoteService_CreateWithoutItemsKeepsTotal(t *testing.T) {
	svc, _, c, _ := newQuoteFixture(t, nil, 2)

	resp, err := svc.Create(context.Background(), createRequest(c.ID, "1234.56"))
	require.NoError(t, err)
	assert.True(t, resp.TotalValue.Equal(dec("1234.56")))
	assert.Empty(t, resp.Items)
}

func TestQuoteService_CreateUnknownCompany(t *testing.T) {
	svc, db, _, _ := newQuoteFixture(t, nil, 2)

	_, err := svc.Create(context.Background(), createRequest(uuid.New(), "100.00",
		dto.QuoteItemRequest{Description: "Linha", UnitValue: dec("100.00")},
	))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	quotes, items := countQuotes(t, db)
	assert.Zero(t, quotes)
	assert.Zero(t, items)
}

func TestQuoteService_CreateUnknownServiceRollsBack(t *testing.T) {
	svc, db, c, _ := newQuoteFixture(t, nil, 2)

	_, err := svc.Create(context.Background(), createRequest(c.ID, "100.00",
		dto.QuoteItemRequest{ServiceID: strp(uuid.NewString()), Description: "Linha", UnitValue: dec("100.00")},
	))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	quotes, _ := countQuotes(t, db)
	assert.Zero(t, quotes)
}

func TestQuoteService_CreateRetriesOnNumberCollision(t *testing.T) {
	numbers := &fixedNumbers{seq: []string{"ORC-TAKEN", "ORC-TAKEN", "ORC-FREE"}}
	svc, _, c, _ := newQuoteFixture(t, numbers, 2)

	_, err := svc.Create(context.Background(), createRequest(c.ID, "10.00"))
	require.NoError(t, err)

	resp, err := svc.Create(context.Background(), createRequest(c.ID, "20.00",
		dto.QuoteItemRequest{Description: "Linha", Quantity: intp(2), UnitValue: dec("10.00")},
	))
	require.NoError(t, err)
	assert.Equal(t, "ORC-FREE", resp.QuoteNumber)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 3, numbers.calls)
}

func TestQuoteService_CreateGivesUpAfterAttempts(t *testing.T) {
	numbers := &fixedNumbers{seq: []string{"ORC-TAKEN"}}
	svc, db, c, _ := newQuoteFixture(t, numbers, 2)

	_, err := svc.Create(context.Background(), createRequest(c.ID, "10.00"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createRequest(c.ID, "10.00",
		dto.QuoteItemRequest{Description: "Linha", UnitValue: dec("10.00")},
	))
	require.Error(t, err)
	assert.Equal(t, KindTransient, KindOf(err))
	assert.Equal(t, 3, numbers.calls)

	quotes, items := countQuotes(t, db)
	assert.EqualValues(t, 1, quotes)
	assert.Zero(t, items)
}

func TestQuoteService_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	svc, db, c, _ := newQuoteFixture(t, nil, 2)
	const n = 20

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool, n)
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Create(context.Background(), createRequest(c.ID, "10.00",
				dto.QuoteItemRequest{Description: "Linha", UnitValue: dec("10.00")},
			))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[resp.QuoteNumber] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, n)
	quotes, items := countQuotes(t, db)
	assert.EqualValues(t, n, quotes)
	assert.EqualValues(t, n, items)
}

func TestQuoteService_UpdateReplacesItemsAndRecomputesTotal(t *testing.T) {
	svc, _, c, _ := newQuoteFixture(t, nil, 2)
	created, err := svc.Create(context.Background(), createRequest(c.ID, "750.50",
		dto.QuoteItemRequest{Description: "Projeto", UnitValue: dec("500.00")},
		dto.QuoteItemRequest{Description: "Instalação", UnitValue: dec("250.50")},
	))
	require.NoError(t, err)

	items := []dto.QuoteItemRequest{{Description: "Vistoria", Quantity: intp(3), UnitValue: dec("100.00")}}
	updated, err := svc.Update(context.Background(), created.ID, dto.UpdateQuoteRequest{
		Quote: dto.QuoteChanges{Title: strp("Reforma revisada")},
		Items: &items,
	})
	require.NoError(t, err)
	assert.Equal(t, "Reforma revisada", updated.Title)
	assert.Equal(t, created.QuoteNumber, updated.QuoteNumber)
	assert.True(t, updated.TotalValue.Equal(dec("300.00")))
	require.Len(t, updated.Items, 1)
	for _, old := range created.Items {
		assert.NotEqual(t, old.ID, updated.Items[0].ID)
	}
}

func TestQuoteService_UpdateRejectsTotalDifferentFromItems(t *testing.T) {
	svc, _, c, _ := newQuoteFixture(t, nil, 2)
	created, err := svc.Create(context.Background(), createRequest(c.ID, "100.00",
		dto.QuoteItemRequest{Description: "Linha", UnitValue: dec("100.00")},
	))
	require.NoError(t, err)

	items := []dto.QuoteItemRequest{{Description: "Linha", UnitValue: dec("50.00")}}
	total := dec("60.00")
	_, err = svc.Update(context.Background(), created.ID, dto.UpdateQuoteRequest{
		Quote: dto.QuoteChanges{TotalValue: &total},
		Items: &items,
	})
	assert.Equal(t, KindValidation, KindOf(err))

	// total-only update is checked against stored items
	_, err = svc.Update(context.Background(), created.ID, dto.UpdateQuoteRequest{
		Quote: dto.QuoteChanges{TotalValue: &total},
	})
	assert.Equal(t, KindValidation, KindOf(err))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalValue.Equal(dec("100.00")))
	assert.Len(t, got.Items, 1)
}

func TestQuoteService_UpdateNotFound(t *testing.T) {
	svc, _, _, _ := newQuoteFixture(t, nil, 2)
	_, err := svc.Update(context.Background(), uuid.New(), dto.UpdateQuoteRequest{
		Quote: dto.QuoteChanges{Title: strp("Novo")},
	})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestQuoteService_Delete(t *testing.T) {
	svc, db, c, inv := newQuoteFixture(t, nil, 2)
	created, err := svc.Create(context.Background(), createRequest(c.ID, "100.00",
		dto.QuoteItemRequest{Description: "Linha", UnitValue: dec("100.00")},
	))
	require.NoError(t, err)

	resp, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, created.QuoteNumber, resp.QuoteNumber)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, 2, inv.count())

	quotes, items := countQuotes(t, db)
	assert.Zero(t, quotes)
	assert.Zero(t, items)

	_, err = svc.Delete(context.Background(), created.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	_, err = svc.Get(context.Background(), created.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestQuoteService_ListPaginates(t *testing.T) {
	svc, _, c, _ := newQuoteFixture(t, nil, 2)
	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), createRequest(c.ID, "10.00"))
		require.NoError(t, err)
	}

	for page, want := range map[int]int{1: 10, 2: 10, 3: 5} {
		resp, err := svc.List(context.Background(), dto.ListFilter{Page: page, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, resp.Quotes, want)
		assert.EqualValues(t, 25, resp.TotalCount)
		assert.Equal(t, 3, resp.TotalPages)
		assert.Equal(t, page, resp.CurrentPage)
	}

	// defaults and cap
	resp, err := svc.List(context.Background(), dto.ListFilter{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Len(t, resp.Quotes, 25)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestBuildItems_RejectsBadServiceID(t *testing.T) {
	_, _, err := buildItems([]dto.QuoteItemRequest{{ServiceID: strp("nope"), Description: "x", UnitValue: dec("1")}})
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Fields, 1)
	assert.Equal(t, "items[0].serviceId", se.Fields[0].Field)
}
