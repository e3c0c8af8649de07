package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"provender/internal/caching"
	"provender/internal/models"
)

// ComputeRiskIndex folds material states into the 0-100 plant gauge. The
// weighting is deliberately punitive: a single blocking material dominates
// the score.
func ComputeRiskIndex(states []models.RiskState) *models.RiskIndex {
	breakdown := models.RiskIndexBreakdown{}
	for _, state := range states {
		switch state {
		case models.RiskBlocking:
			breakdown.Blocking++
		case models.RiskOutOfStock:
			breakdown.OutOfStock++
		case models.RiskBelowSafety:
			breakdown.BelowSafety++
		case models.RiskToOrder:
			breakdown.ToOrder++
		case models.RiskHealthy:
			breakdown.Healthy++
		}
	}

	value := 30*breakdown.Blocking + 20*breakdown.OutOfStock + 10*breakdown.BelowSafety
	if value > 100 {
		value = 100
	}

	// Two blocking materials (value 60) already read as critical.
	status := models.RiskIndexCritical
	switch {
	case value <= 30:
		status = models.RiskIndexHealthy
	case value < 60:
		status = models.RiskIndexWatch
	}

	return &models.RiskIndex{Value: value, Status: status, Breakdown: breakdown}
}

type RiskIndexService interface {
	PlantIndex(ctx context.Context) (*models.RiskIndex, error)
}

type riskIndexService struct {
	ledger   StockLedgerService
	cache    caching.CacheService
	cacheTTL time.Duration
}

func NewRiskIndexService(ledger StockLedgerService, cache caching.CacheService, cacheTTL time.Duration) RiskIndexService {
	return &riskIndexService{ledger: ledger, cache: cache, cacheTTL: cacheTTL}
}

func (s *riskIndexService) PlantIndex(ctx context.Context) (*models.RiskIndex, error) {
	if cached, err := s.cache.GetRiskIndex(ctx); err == nil && cached != nil {
		return cached, nil
	}

	snapshots, err := s.ledger.RiskSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	states := make([]models.RiskState, 0, len(snapshots))
	for _, snapshot := range snapshots {
		states = append(states, snapshot.RiskState)
	}
	index := ComputeRiskIndex(states)

	if err := s.cache.SetRiskIndex(ctx, index, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("caching risk index failed")
	}
	return index, nil
}
