package service

import (
	"context"
	"errors"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"
	"github.com/Orbeng/engser/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const msgCompanyNotFound = "Empresa não encontrada"

type CompanyService interface {
	List(ctx context.Context, filter dto.ListFilter) (*dto.CompanyListResponse, error)
	All(ctx context.Context) ([]dto.CompanyOption, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error)
	Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyService struct {
	repo  repository.CompanyRepository
	cache Invalidator
}

func NewCompanyService(repo repository.CompanyRepository, cache Invalidator) CompanyService {
	return &companyService{repo: repo, cache: cache}
}

func (s *companyService) List(ctx context.Context, filter dto.ListFilter) (*dto.CompanyListResponse, error) {
	filter = normalizeFilter(filter)
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		err = classify(err, msgCompanyNotFound)
		logFailure("company.list", "", err)
		return nil, err
	}
	resp := &dto.CompanyListResponse{
		Companies:   make([]dto.CompanyResponse, len(list)),
		TotalPages:  dto.TotalPages(total, filter.PageSize),
		CurrentPage: filter.Page,
		TotalCount:  total,
	}
	for i := range list {
		resp.Companies[i] = *companyToResponse(&list[i])
	}
	return resp, nil
}

func (s *companyService) All(ctx context.Context) ([]dto.CompanyOption, error) {
	list, err := s.repo.All(ctx)
	if err != nil {
		err = classify(err, msgCompanyNotFound)
		logFailure("company.all", "", err)
		return nil, err
	}
	out := make([]dto.CompanyOption, len(list))
	for i, c := range list {
		out[i] = dto.CompanyOption{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		err = classify(err, msgCompanyNotFound)
		logFailure("company.get", id.String(), err)
		return nil, err
	}
	return companyToResponse(c), nil
}

func (s *companyService) Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	c := &model.Company{
		Name:        req.Name,
		CNPJ:        req.CNPJ,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		err = s.classifyWrite(err)
		logFailure("company.create", req.CNPJ, err)
		return nil, err
	}
	s.invalidate(ctx)
	log.Info().Str("company_id", c.ID.String()).Msg("company created")
	return companyToResponse(c), nil
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	fields := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	set("name", req.Name)
	set("cnpj", req.CNPJ)
	set("contact_name", req.ContactName)
	set("email", req.Email)
	set("phone", req.Phone)
	set("address", req.Address)
	set("city", req.City)
	set("state", req.State)
	set("notes", req.Notes)

	c, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		err = s.classifyWrite(err)
		logFailure("company.update", id.String(), err)
		return nil, err
	}
	s.invalidate(ctx)
	return companyToResponse(c), nil
}

func (s *companyService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			err = newError(KindConflict, "Não é possível excluir a empresa: existem serviços ou orçamentos vinculados", err)
		} else {
			err = classify(err, msgCompanyNotFound)
		}
		logFailure("company.delete", id.String(), err)
		return err
	}
	s.invalidate(ctx)
	log.Info().Str("company_id", id.String()).Msg("company deleted")
	return nil
}

func (s *companyService) classifyWrite(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{
			Kind:    KindDuplicate,
			Message: "Já existe uma empresa cadastrada com este CNPJ",
			Fields:  []FieldError{{Field: "cnpj", Message: "CNPJ já cadastrado"}},
			Err:     err,
		}
	}
	return classify(err, msgCompanyNotFound)
}

func (s *companyService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
