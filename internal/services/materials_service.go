package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"provender/internal/apperrors"
	"provender/internal/caching"
	"provender/internal/models"
	"provender/internal/repositories"
)

// MaterialService is the catalog write path. Every create and update goes
// through Material.Validate before it reaches the repository.
type MaterialService interface {
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
}

type materialService struct {
	materialRepo repositories.MaterialRepository
	cache        caching.CacheService
}

func NewMaterialService(materialRepo repositories.MaterialRepository, cache caching.CacheService) MaterialService {
	return &materialService{materialRepo: materialRepo, cache: cache}
}

func (s *materialService) Create(ctx context.Context, material *models.Material) error {
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	if material.Criticality == "" {
		material.Criticality = models.CriticalityLow
	}
	if material.RiskState == "" {
		material.RiskState = models.RiskHealthy
	}

	if err := material.Validate(); err != nil {
		return err
	}
	if err := s.materialRepo.Create(ctx, material); err != nil {
		return err
	}
	s.invalidateRisk(ctx)
	return nil
}

func (s *materialService) Update(ctx context.Context, material *models.Material) error {
	if err := material.Validate(); err != nil {
		return err
	}
	if _, err := s.materialRepo.GetByID(ctx, material.ID); err != nil {
		return &apperrors.NotFoundError{Entity: "material", ID: material.ID.String()}
	}
	if err := s.materialRepo.Update(ctx, material); err != nil {
		return err
	}
	s.invalidateRisk(ctx)
	return nil
}

// Threshold edits change the derived risk views, so both cached reads go.
func (s *materialService) invalidateRisk(ctx context.Context) {
	if err := s.cache.InvalidateRisk(ctx); err != nil {
		log.Warn().Err(err).Msg("risk cache invalidation failed after material write")
	}
}
