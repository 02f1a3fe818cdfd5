package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"
	"github.com/Orbeng/engser/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DashboardCacheKey holds the cached stats payload.
const DashboardCacheKey = "dashboard:stats"

type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	Invalidator
}

type dashboardService struct {
	companies repository.CompanyRepository
	services  repository.ServiceRepository
	quotes    repository.QuoteRepository
	rdb       *redis.Client // nil disables caching
	ttl       time.Duration
}

func NewDashboardService(
	companies repository.CompanyRepository,
	services repository.ServiceRepository,
	quotes repository.QuoteRepository,
	rdb *redis.Client,
	ttl time.Duration,
) DashboardService {
	return &dashboardService{companies: companies, services: services, quotes: quotes, rdb: rdb, ttl: ttl}
}

func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	// 1. Try Redis cache
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, DashboardCacheKey).Bytes(); err == nil {
			var resp dto.DashboardStatsResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	// 2. Cache miss: aggregate from the store
	resp, err := s.compute(ctx)
	if err != nil {
		err = classify(err, "")
		logFailure("dashboard.stats", "", err)
		return nil, err
	}

	// 3. Populate cache, best effort
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			if err := s.rdb.Set(ctx, DashboardCacheKey, b, s.ttl).Err(); err != nil {
				log.Debug().Err(err).Msg("dashboard: cache write failed")
			}
		}
	}
	return resp, nil
}

func (s *dashboardService) compute(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	var (
		resp dto.DashboardStatsResponse
		err  error
	)
	if resp.TotalCompanies, err = s.companies.Count(ctx); err != nil {
		return nil, err
	}
	if resp.ActiveServices, err = s.services.CountByStatus(ctx, model.ServiceInProgress); err != nil {
		return nil, err
	}
	if resp.TotalQuotes, err = s.quotes.Count(ctx); err != nil {
		return nil, err
	}
	if resp.TotalRevenue, err = s.services.SumValueByStatus(ctx, model.ServiceCompleted); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Invalidate drops the cached stats. Called after every company, service or
// quote write.
func (s *dashboardService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, DashboardCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache invalidation failed")
	}
}
