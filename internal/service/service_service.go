package service

import (
	"context"
	"errors"
	"time"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"
	"github.com/Orbeng/engser/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	msgServiceNotFound = "Serviço não encontrado"

	recentServicesLimit   = 5
	upcomingDeadlineDays  = 30
	upcomingDeadlineLimit = 3
)

type ServiceService interface {
	List(ctx context.Context, filter dto.ListFilter) (*dto.ServiceListResponse, error)
	All(ctx context.Context) ([]dto.ServiceResponse, error)
	Recent(ctx context.Context) ([]dto.ServiceResponse, error)
	UpcomingDeadlines(ctx context.Context) ([]dto.ServiceResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
	Create(ctx context.Context, req dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type serviceService struct {
	repo  repository.ServiceRepository
	cache Invalidator
	now   func() time.Time
}

func NewServiceService(repo repository.ServiceRepository, cache Invalidator) ServiceService {
	return &serviceService{repo: repo, cache: cache, now: time.Now}
}

func (s *serviceService) List(ctx context.Context, filter dto.ListFilter) (*dto.ServiceListResponse, error) {
	filter = normalizeFilter(filter)
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		err = classify(err, msgServiceNotFound)
		logFailure("service.list", "", err)
		return nil, err
	}
	return &dto.ServiceListResponse{
		Services:    servicesToResponse(list),
		TotalPages:  dto.TotalPages(total, filter.PageSize),
		CurrentPage: filter.Page,
		TotalCount:  total,
	}, nil
}

func (s *serviceService) All(ctx context.Context) ([]dto.ServiceResponse, error) {
	list, err := s.repo.All(ctx)
	if err != nil {
		err = classify(err, msgServiceNotFound)
		logFailure("service.all", "", err)
		return nil, err
	}
	return servicesToResponse(list), nil
}

func (s *serviceService) Recent(ctx context.Context) ([]dto.ServiceResponse, error) {
	list, err := s.repo.Recent(ctx, recentServicesLimit)
	if err != nil {
		err = classify(err, msgServiceNotFound)
		logFailure("service.recent", "", err)
		return nil, err
	}
	return servicesToResponse(list), nil
}

// UpcomingDeadlines returns the services expiring within the next 30 days,
// soonest first.
func (s *serviceService) UpcomingDeadlines(ctx context.Context) ([]dto.ServiceResponse, error) {
	now := s.now()
	list, err := s.repo.ExpiringBetween(ctx, now, now.AddDate(0, 0, upcomingDeadlineDays), upcomingDeadlineLimit)
	if err != nil {
		err = classify(err, msgServiceNotFound)
		logFailure("service.upcoming", "", err)
		return nil, err
	}
	return servicesToResponse(list), nil
}

func (s *serviceService) Get(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		err = classify(err, msgServiceNotFound)
		logFailure("service.get", id.String(), err)
		return nil, err
	}
	return serviceToResponse(svc), nil
}

func (s *serviceService) Create(ctx context.Context, req dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, ValidationError("Empresa inválida", FieldError{Field: "companyId", Message: "Identificador inválido"})
	}
	svc := &model.Service{
		ART:         req.ART,
		Description: req.Description,
		ServiceDate: req.ServiceDate,
		ExpiryDate:  req.ExpiryDate,
		Value:       req.Value.Round(2),
		Status:      req.Status,
		Notes:       req.Notes,
		CompanyID:   companyID,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		err = classifyServiceWrite(err)
		logFailure("service.create", req.ART, err)
		return nil, err
	}
	s.invalidate(ctx)
	log.Info().Str("service_id", svc.ID.String()).Msg("service created")
	return s.Get(ctx, svc.ID)
}

func (s *serviceService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	fields := map[string]interface{}{}
	if req.ART != nil {
		fields["art"] = *req.ART
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ServiceDate != nil {
		fields["service_date"] = *req.ServiceDate
	}
	if req.ExpiryDate != nil {
		fields["expiry_date"] = *req.ExpiryDate
	}
	if req.Value != nil {
		fields["value"] = req.Value.Round(2)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.CompanyID != nil {
		cid, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, ValidationError("Empresa inválida", FieldError{Field: "companyId", Message: "Identificador inválido"})
		}
		fields["company_id"] = cid
	}

	svc, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		err = classifyServiceWrite(err)
		logFailure("service.update", id.String(), err)
		return nil, err
	}
	s.invalidate(ctx)
	return serviceToResponse(svc), nil
}

func (s *serviceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			err = newError(KindConflict, "Não é possível excluir o serviço: ele está vinculado a orçamentos", err)
		} else {
			err = classify(err, msgServiceNotFound)
		}
		logFailure("service.delete", id.String(), err)
		return err
	}
	s.invalidate(ctx)
	log.Info().Str("service_id", id.String()).Msg("service deleted")
	return nil
}

func (s *serviceService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func classifyServiceWrite(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &Error{
			Kind:    KindConflict,
			Message: msgCompanyNotFound,
			Fields:  []FieldError{{Field: "companyId", Message: msgCompanyNotFound}},
			Err:     err,
		}
	}
	return classify(err, msgServiceNotFound)
}

func servicesToResponse(list []model.Service) []dto.ServiceResponse {
	out := make([]dto.ServiceResponse, len(list))
	for i := range list {
		out[i] = *serviceToResponse(&list[i])
	}
	return out
}
