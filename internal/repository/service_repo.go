package repository

import (
	"context"
	"time"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	List(ctx context.Context, filter dto.ListFilter) ([]model.Service, int64, error)
	// All returns every service with its company, newest first.
	All(ctx context.Context) ([]model.Service, error)
	Recent(ctx context.Context, limit int) ([]model.Service, error)
	// ExpiringBetween returns services whose expiry date falls in [from, to],
	// soonest first.
	ExpiringBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Service, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Service, error)
	// Delete fails with ErrReferenced while quote items point at the service.
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	SumValueByStatus(ctx context.Context, status string) (decimal.Decimal, error)
}

type serviceRepo struct{ db *gorm.DB }

func NewServiceRepository(db *gorm.DB) ServiceRepository { return &serviceRepo{db: db} }

func (r *serviceRepo) Create(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Omit("Company").Create(s).Error
}

func (r *serviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).Preload("Company").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepo) List(ctx context.Context, filter dto.ListFilter) ([]model.Service, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Service{}).
			Joins("LEFT JOIN companies ON companies.id = services.company_id")
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where(
				"LOWER(services.art) LIKE ? ESCAPE '\\' OR LOWER(services.description) LIKE ? ESCAPE '\\' OR LOWER(companies.name) LIKE ? ESCAPE '\\'",
				p, p, p,
			)
		}
		if !isAllStatuses(filter.Status) {
			q = q.Where("services.status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Service
	err := base().Select("services.*").Preload("Company").
		Order("services.created_at DESC").Order("services.id DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&list).Error
	return list, total, err
}

func (r *serviceRepo) All(ctx context.Context) ([]model.Service, error) {
	var list []model.Service
	err := r.db.WithContext(ctx).Preload("Company").
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *serviceRepo) Recent(ctx context.Context, limit int) ([]model.Service, error) {
	var list []model.Service
	err := r.db.WithContext(ctx).Preload("Company").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Find(&list).Error
	return list, err
}

func (r *serviceRepo) ExpiringBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Service, error) {
	var list []model.Service
	err := r.db.WithContext(ctx).Preload("Company").
		Where("expiry_date >= ? AND expiry_date <= ?", from, to).
		Order("expiry_date ASC").
		Limit(limit).Find(&list).Error
	return list, err
}

func (r *serviceRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Service, error) {
	var out model.Service
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&model.Service{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.Preload("Company").First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *serviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.Service
		if err := tx.Select("id").First(&s, "id = ?", id).Error; err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(&model.QuoteItem{}).Where("service_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrReferenced
		}
		return tx.Where("id = ?", id).Delete(&model.Service{}).Error
	})
}

func (r *serviceRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Service{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *serviceRepo) SumValueByStatus(ctx context.Context, status string) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&model.Service{}).
		Select("COALESCE(SUM(value), 0) AS total").
		Where("status = ?", status).
		Scan(&row).Error
	return row.Total, err
}
