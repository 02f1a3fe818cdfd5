package repository

import (
	"context"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context, filter dto.ListFilter) ([]model.Company, int64, error)
	All(ctx context.Context) ([]model.Company, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Company, error)
	// Delete fails with ErrReferenced while services or quotes point at the company.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepo) List(ctx context.Context, filter dto.ListFilter) ([]model.Company, int64, error) {
	var list []model.Company
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Company{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(
			"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(cnpj) LIKE ? ESCAPE '\\' OR LOWER(contact_name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(city) LIKE ? ESCAPE '\\'",
			p, p, p, p, p,
		)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("name ASC").Order("id ASC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&list).Error
	return list, total, err
}

func (r *companyRepo) All(ctx context.Context) ([]model.Company, error) {
	var list []model.Company
	err := r.db.WithContext(ctx).Select("id", "name").Order("name ASC").Find(&list).Error
	return list, err
}

func (r *companyRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Company, error) {
	var out model.Company
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&model.Company{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *companyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Company
		if err := tx.Select("id").First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		var services, quotes int64
		if err := tx.Model(&model.Service{}).Where("company_id = ?", id).Count(&services).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Quote{}).Where("company_id = ?", id).Count(&quotes).Error; err != nil {
			return err
		}
		if services > 0 || quotes > 0 {
			return ErrReferenced
		}
		return tx.Where("id = ?", id).Delete(&model.Company{}).Error
	})
}

func (r *companyRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Company{}).Count(&n).Error
	return n, err
}
