package service

import (
	"context"
	"time"

	"garage-booking/internal/cache"
	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
	"garage-booking/internal/repository"
)

const (
	servicesCacheKey  = "catalog:services"
	locationsCacheKey = "catalog:locations"
)

type catalogService struct {
	catalogRepo repository.CatalogRepository
	cache       cache.Cache
	ttl         time.Duration
}

func NewCatalogService(catalogRepo repository.CatalogRepository, c cache.Cache, ttl time.Duration) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		cache:       c,
		ttl:         ttl,
	}
}

func (s *catalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	logger.EnterMethod("catalogService.ListServices")
	services, err := cache.Remember(ctx, s.cache, servicesCacheKey, s.ttl, s.catalogRepo.ListServices)
	if err != nil {
		logger.ExitMethodWithError("catalogService.ListServices", err)
		return nil, err
	}
	logger.ExitMethod("catalogService.ListServices", "count", len(services))
	return services, nil
}

func (s *catalogService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	logger.EnterMethod("catalogService.ListLocations")
	locations, err := cache.Remember(ctx, s.cache, locationsCacheKey, s.ttl, s.loadLocations)
	if err != nil {
		logger.ExitMethodWithError("catalogService.ListLocations", err)
		return nil, err
	}
	logger.ExitMethod("catalogService.ListLocations", "count", len(locations))
	return locations, nil
}

// loadLocations attaches each location's weekly opening hours.
func (s *catalogService) loadLocations(ctx context.Context) ([]domain.Location, error) {
	locations, err := s.catalogRepo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	hours, err := s.catalogRepo.ListOpeningHours(ctx)
	if err != nil {
		return nil, err
	}

	byLocation := make(map[int64][]domain.OpeningHours)
	for _, h := range hours {
		byLocation[h.LocationID] = append(byLocation[h.LocationID], h)
	}
	for i := range locations {
		locations[i].OpeningHours = byLocation[locations[i].ID]
	}
	return locations, nil
}
