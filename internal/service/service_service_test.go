package service

import (
	"context"
	"testing"
	"time"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"
	"github.com/Orbeng/engser/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceService_CreateRequiresCompany(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceService(repository.NewServiceRepository(db), nil)

	_, err := svc.Create(context.Background(), dto.CreateServiceRequest{
		ART: "ART-1", Description: "Laudo técnico", ServiceDate: time.Now(), ExpiryDate: time.Now(),
		Value: dec("100.00"), Status: model.ServiceScheduled, CompanyID: uuid.NewString(),
	})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestServiceService_CreateListAndFilter(t *testing.T) {
	db := newTestDB(t)
	c := seedCompany(t, db, "Construtora Alfa", "11.111.111/0001-11")
	svc := NewServiceService(repository.NewServiceRepository(db), nil)

	created, err := svc.Create(context.Background(), dto.CreateServiceRequest{
		ART: "ART-2026-01", Description: "Projeto de combate a incêndio", ServiceDate: time.Now(),
		ExpiryDate: time.Now().AddDate(1, 0, 0), Value: dec("3500.00"), Status: model.ServiceInProgress,
		CompanyID: c.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Company)
	assert.Equal(t, "Construtora Alfa", created.Company.Name)
	seedService(t, db, c.ID, model.ServiceCompleted, time.Now())

	resp, err := svc.List(context.Background(), dto.ListFilter{Status: model.ServiceInProgress})
	require.NoError(t, err)
	require.Len(t, resp.Services, 1)
	assert.Equal(t, created.ID, resp.Services[0].ID)

	resp, err = svc.List(context.Background(), dto.ListFilter{Search: "alfa", Status: "all"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.TotalCount)
	require.NotNil(t, resp.Services[0].Company)
}

func TestServiceService_RecentAndUpcoming(t *testing.T) {
	db := newTestDB(t)
	c := seedCompany(t, db, "Construtora Alfa", "11.111.111/0001-11")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	soon := seedService(t, db, c.ID, model.ServiceScheduled, now.AddDate(0, 0, 3))
	later := seedService(t, db, c.ID, model.ServiceScheduled, now.AddDate(0, 0, 20))
	seedService(t, db, c.ID, model.ServiceScheduled, now.AddDate(0, 0, 45))  // outside window
	seedService(t, db, c.ID, model.ServiceScheduled, now.AddDate(0, 0, -1))  // already expired
	for i := 0; i < 4; i++ {
		seedService(t, db, c.ID, model.ServiceCompleted, now.AddDate(1, 0, 0))
	}

	svc := NewServiceService(repository.NewServiceRepository(db), nil).(*serviceService)
	svc.now = func() time.Time { return now }

	upcoming, err := svc.UpcomingDeadlines(context.Background())
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, soon.ID, upcoming[0].ID)
	assert.Equal(t, later.ID, upcoming[1].ID)

	recent, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, recent, recentServicesLimit)
}

func TestServiceService_DeleteGuardedByQuoteItems(t *testing.T) {
	db := newTestDB(t)
	c := seedCompany(t, db, "Construtora Alfa", "11.111.111/0001-11")
	s := seedService(t, db, c.ID, model.ServiceScheduled, time.Now())
	svc := NewServiceService(repository.NewServiceRepository(db), nil)

	quotes := NewQuoteService(repository.NewQuoteRepository(db), NewClockNumberSource("ORC"), 2, nil)
	q, err := quotes.Create(context.Background(), createRequest(c.ID, "100.00",
		dto.QuoteItemRequest{ServiceID: strp(s.ID.String()), Description: "Laudo", UnitValue: dec("100.00")},
	))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), s.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = quotes.Delete(context.Background(), q.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), s.ID))
}

func TestServiceService_Update(t *testing.T) {
	db := newTestDB(t)
	c := seedCompany(t, db, "Construtora Alfa", "11.111.111/0001-11")
	s := seedService(t, db, c.ID, model.ServiceScheduled, time.Now())
	svc := NewServiceService(repository.NewServiceRepository(db), nil)

	status := model.ServiceCompleted
	value := dec("1500.00")
	got, err := svc.Update(context.Background(), s.ID, dto.UpdateServiceRequest{Status: &status, Value: &value})
	require.NoError(t, err)
	assert.Equal(t, model.ServiceCompleted, got.Status)
	assert.True(t, got.Value.Equal(value))

	_, err = svc.Update(context.Background(), uuid.New(), dto.UpdateServiceRequest{Status: &status})
	assert.Equal(t, KindNotFound, KindOf(err))
}
