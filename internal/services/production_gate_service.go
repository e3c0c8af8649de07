package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"provender/internal/apperrors"
	"provender/internal/models"
	"provender/internal/repositories"
)

type ProductionGateService interface {
	// CanStart admits or denies a production run of batchCount batches. Any
	// shortage on a mandatory, stock-affecting ingredient denies the run and
	// raises a deduplicated production-blocked alert.
	CanStart(ctx context.Context, recipeID uuid.UUID, batchCount int) (*models.ProductionGateResult, error)
}

type productionGateService struct {
	recipeRepo   repositories.RecipeRepository
	materialRepo repositories.MaterialRepository
	ledger       StockLedgerService
	alerts       AlertService
}

func NewProductionGateService(
	recipeRepo repositories.RecipeRepository,
	materialRepo repositories.MaterialRepository,
	ledger StockLedgerService,
	alerts AlertService,
) ProductionGateService {
	return &productionGateService{
		recipeRepo:   recipeRepo,
		materialRepo: materialRepo,
		ledger:       ledger,
		alerts:       alerts,
	}
}

func (s *productionGateService) CanStart(ctx context.Context, recipeID uuid.UUID, batchCount int) (*models.ProductionGateResult, error) {
	if batchCount <= 0 {
		return nil, &apperrors.ValidationError{Field: "batch_count", Reason: "must be positive"}
	}

	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, &apperrors.NotFoundError{Entity: "recipe", ID: recipeID.String()}
	}

	ingredients, err := s.recipeRepo.ListIngredients(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if len(ingredients) == 0 {
		return &models.ProductionGateResult{CanStart: true, Blockers: []models.ShortageBlocker{}}, nil
	}

	ids := make([]uuid.UUID, 0, len(ingredients))
	for _, ingredient := range ingredients {
		ids = append(ids, ingredient.MaterialID)
	}

	// One batched ledger read; the blockers and the alert below reflect this
	// single snapshot.
	stocks, err := s.ledger.CurrentStock(ctx, ids)
	if err != nil {
		return nil, err
	}
	materials, err := s.materialRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}

	blockers := []models.ShortageBlocker{}
	for _, ingredient := range ingredients {
		required := math.Ceil(ingredient.PerBatchQuantity * float64(batchCount))
		available := stocks[ingredient.MaterialID]
		if available >= required {
			continue
		}

		blocker := models.ShortageBlocker{
			MaterialID: ingredient.MaterialID,
			Required:   required,
			Available:  available,
			Shortage:   required - available,
		}
		if m, ok := byID[ingredient.MaterialID]; ok {
			blocker.Code = m.Code
			blocker.Name = m.Name
		}
		blockers = append(blockers, blocker)
	}

	result := &models.ProductionGateResult{CanStart: len(blockers) == 0, Blockers: blockers}
	if result.CanStart {
		return result, nil
	}

	shortfalls := make([]models.JSONB, 0, len(blockers))
	for _, blocker := range blockers {
		shortfalls = append(shortfalls, models.JSONB{
			"material_id": blocker.MaterialID.String(),
			"code":        blocker.Code,
			"shortage":    blocker.Shortage,
		})
	}
	msg := fmt.Sprintf("production of %s blocked: %d ingredient(s) short", recipe.Name, len(blockers))
	if _, err := s.alerts.Raise(ctx, models.AlertProductionBlocked, models.SeverityCritical,
		models.AlertEntityRecipe, recipeID.String(), msg,
		models.JSONB{"batch_count": batchCount, "shortfalls": shortfalls}); err != nil {
		return nil, err
	}
	return result, nil
}
