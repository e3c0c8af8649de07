package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"provender/internal/apperrors"
	"provender/internal/caching"
	"provender/internal/models"
	"provender/internal/repositories"
)

// EffectiveSafety falls back to min stock when no explicit safety threshold
// is set.
func EffectiveSafety(m *models.Material) float64 {
	if m.SafetyThreshold != nil {
		return *m.SafetyThreshold
	}
	return m.MinStock
}

// EffectiveOrder falls back to min stock scaled by the configured factor.
func EffectiveOrder(m *models.Material, factor float64) float64 {
	if m.OrderThreshold != nil {
		return *m.OrderThreshold
	}
	return math.Round(m.MinStock * factor)
}

// ComputeRiskState classifies a stock level. Rules apply in strict priority;
// a stock exactly on a threshold falls into the more severe band. Negative
// stock behaves like zero.
func ComputeRiskState(stock float64, m *models.Material, usedInActiveRecipe bool, factor float64) models.RiskState {
	effSafety := EffectiveSafety(m)
	effOrder := EffectiveOrder(m, factor)

	if stock <= 0 {
		if usedInActiveRecipe || m.Criticality == models.CriticalityBlocking {
			return models.RiskBlocking
		}
		return models.RiskOutOfStock
	}
	if stock <= effOrder {
		if m.Criticality == models.CriticalityBlocking && stock < effSafety {
			return models.RiskBlocking
		}
		return models.RiskToOrder
	}
	if stock <= effSafety {
		return models.RiskBelowSafety
	}
	return models.RiskHealthy
}

// EffectiveCriticality lifts the manual level by recipe usage, never lowers it.
func EffectiveCriticality(manual models.Criticality, activeRecipeUsage int) models.Criticality {
	var derived models.Criticality
	switch {
	case activeRecipeUsage >= 3:
		derived = models.CriticalityBlocking
	case activeRecipeUsage == 2:
		derived = models.CriticalityHigh
	case activeRecipeUsage == 1:
		derived = models.CriticalityMedium
	default:
		derived = models.CriticalityLow
	}
	return models.MaxCriticality(manual, derived)
}

// CoverageDays returns nil (infinite) when consumption is absent or
// non-positive; otherwise stock divided by daily consumption, unrounded.
func CoverageDays(stock float64, avgDailyConsumption *float64) *float64 {
	if avgDailyConsumption == nil || *avgDailyConsumption <= 0 {
		return nil
	}
	days := stock / *avgDailyConsumption
	return &days
}

type StockLedgerService interface {
	// CurrentStock derives stock for the given materials from the ledger in
	// one batched aggregate.
	CurrentStock(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]float64, error)
	RiskSnapshots(ctx context.Context) ([]*models.MaterialRiskSnapshot, error)
	RecordMovement(ctx context.Context, movement *models.StockMovement) error
	CorrectMovement(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	// RecomputeDerived refreshes every tracked material's cached stock, risk
	// state and recipe usage from the ledger. Returns the number of materials
	// refreshed.
	RecomputeDerived(ctx context.Context) (int, error)
}

type stockLedgerService struct {
	materialRepo repositories.MaterialRepository
	movementRepo repositories.StockMovementRepository
	recipeRepo   repositories.RecipeRepository
	auditRepo    repositories.AuditLogsRepository
	cache        caching.CacheService
	factor       float64
	cacheTTL     time.Duration
}

func NewStockLedgerService(
	materialRepo repositories.MaterialRepository,
	movementRepo repositories.StockMovementRepository,
	recipeRepo repositories.RecipeRepository,
	auditRepo repositories.AuditLogsRepository,
	cache caching.CacheService,
	factor float64,
	cacheTTL time.Duration,
) StockLedgerService {
	return &stockLedgerService{
		materialRepo: materialRepo,
		movementRepo: movementRepo,
		recipeRepo:   recipeRepo,
		auditRepo:    auditRepo,
		cache:        cache,
		factor:       factor,
		cacheTTL:     cacheTTL,
	}
}

func (s *stockLedgerService) CurrentStock(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	return s.movementRepo.SumByMaterialIDs(ctx, materialIDs)
}

func (s *stockLedgerService) RiskSnapshots(ctx context.Context) ([]*models.MaterialRiskSnapshot, error) {
	if cached, err := s.cache.GetRiskSnapshots(ctx); err == nil && cached != nil {
		return cached, nil
	}

	snapshots, err := s.buildSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRiskSnapshots(ctx, snapshots, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("caching risk snapshots failed")
	}
	return snapshots, nil
}

func (s *stockLedgerService) buildSnapshots(ctx context.Context) ([]*models.MaterialRiskSnapshot, error) {
	materials, err := s.materialRepo.ListTracked(ctx)
	if err != nil {
		return nil, err
	}
	if len(materials) == 0 {
		return []*models.MaterialRiskSnapshot{}, nil
	}

	ids := make([]uuid.UUID, 0, len(materials))
	for _, m := range materials {
		ids = append(ids, m.ID)
	}

	stocks, err := s.movementRepo.SumByMaterialIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	usage, err := s.recipeRepo.CountActiveUsage(ctx, ids)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*models.MaterialRiskSnapshot, 0, len(materials))
	for _, m := range materials {
		stock := stocks[m.ID]
		snapshots = append(snapshots, &models.MaterialRiskSnapshot{
			MaterialID:           m.ID,
			Code:                 m.Code,
			Name:                 m.Name,
			Unit:                 m.Unit,
			CurrentStock:         stock,
			MinStock:             m.MinStock,
			EffectiveSafety:      EffectiveSafety(m),
			EffectiveOrder:       EffectiveOrder(m, s.factor),
			RiskState:            ComputeRiskState(stock, m, usage[m.ID] > 0, s.factor),
			EffectiveCriticality: EffectiveCriticality(m.Criticality, usage[m.ID]),
			CoverageDays:         CoverageDays(stock, m.AvgDailyConsumption),
			AvgDailyConsumption:  m.AvgDailyConsumption,
			LeadTimeDays:         m.LeadTimeDays,
			SupplierID:           m.SupplierID,
		})
	}
	return snapshots, nil
}

func (s *stockLedgerService) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.Quantity <= 0 {
		return &apperrors.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if movement.Direction != models.MovementIn && movement.Direction != models.MovementOut {
		return &apperrors.ValidationError{Field: "direction", Reason: "must be IN or OUT"}
	}

	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if movement.MovedAt.IsZero() {
		movement.MovedAt = time.Now()
	}
	if err := s.movementRepo.Insert(ctx, movement); err != nil {
		return err
	}

	if err := s.cache.InvalidateRisk(ctx); err != nil {
		log.Warn().Err(err).Msg("risk cache invalidation failed after movement")
	}
	return nil
}

// CorrectMovement soft-deletes a wrong ledger row. The correcting entry is a
// fresh RecordMovement call; rows are never updated in place.
func (s *stockLedgerService) CorrectMovement(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if err := s.movementRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	audit := &models.AuditLog{
		ID:        uuid.New(),
		TableName: "stock_movements",
		RecordID:  id.String(),
		Action:    models.ActionSoftDelete,
		ChangedBy: &actorID,
	}
	if err := s.auditRepo.Create(ctx, audit); err != nil {
		return err
	}

	if err := s.cache.InvalidateRisk(ctx); err != nil {
		log.Warn().Err(err).Msg("risk cache invalidation failed after correction")
	}
	return nil
}

func (s *stockLedgerService) RecomputeDerived(ctx context.Context) (int, error) {
	materials, err := s.materialRepo.ListTracked(ctx)
	if err != nil {
		return 0, err
	}
	if len(materials) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(materials))
	for _, m := range materials {
		ids = append(ids, m.ID)
	}

	stocks, err := s.movementRepo.SumByMaterialIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	usage, err := s.recipeRepo.CountActiveUsage(ctx, ids)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, m := range materials {
		stock := stocks[m.ID]
		state := ComputeRiskState(stock, m, usage[m.ID] > 0, s.factor)
		if err := s.materialRepo.UpdateDerived(ctx, m.ID, stock, state, usage[m.ID]); err != nil {
			return refreshed, err
		}
		refreshed++
	}

	if err := s.cache.InvalidateRisk(ctx); err != nil {
		log.Warn().Err(err).Msg("risk cache invalidation failed after recompute")
	}
	return refreshed, nil
}
