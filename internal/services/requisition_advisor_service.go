package services

import (
	"context"
	"math"

	"github.com/google/uuid"

	"provender/internal/models"
	"provender/internal/repositories"
)

// SuggestedQuantity targets the order threshold plus lead-time consumption,
// net of stock on hand and stock already on order. Never negative.
func SuggestedQuantity(snapshot *models.MaterialRiskSnapshot, onOrder float64) float64 {
	var daily float64
	if snapshot.AvgDailyConsumption != nil && *snapshot.AvgDailyConsumption > 0 {
		daily = *snapshot.AvgDailyConsumption
	}
	qty := math.Ceil(snapshot.EffectiveOrder + float64(snapshot.LeadTimeDays)*daily - snapshot.CurrentStock - onOrder)
	if qty < 0 {
		return 0
	}
	return qty
}

func reorderPriority(snapshot *models.MaterialRiskSnapshot) models.ReorderPriority {
	switch snapshot.RiskState {
	case models.RiskBlocking, models.RiskOutOfStock:
		return models.ReorderUrgent
	case models.RiskBelowSafety:
		return models.ReorderHigh
	}
	if snapshot.CoverageDays != nil && *snapshot.CoverageDays < float64(snapshot.LeadTimeDays) {
		return models.ReorderHigh
	}
	return models.ReorderNormal
}

type RequisitionAdvisorService interface {
	Suggest(ctx context.Context) ([]*models.ReorderSuggestion, error)
}

type requisitionAdvisorService struct {
	ledger    StockLedgerService
	orderRepo repositories.PurchaseOrderRepository
}

func NewRequisitionAdvisorService(ledger StockLedgerService, orderRepo repositories.PurchaseOrderRepository) RequisitionAdvisorService {
	return &requisitionAdvisorService{ledger: ledger, orderRepo: orderRepo}
}

func (s *requisitionAdvisorService) Suggest(ctx context.Context) ([]*models.ReorderSuggestion, error) {
	snapshots, err := s.ledger.RiskSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	onOrder, err := s.orderRepo.ListOpenQuantities(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(snapshots))
	for _, snapshot := range snapshots {
		ids = append(ids, snapshot.MaterialID)
	}
	prices, err := s.orderRepo.LastUnitPrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	var suggestions []*models.ReorderSuggestion
	for _, snapshot := range snapshots {
		qty := SuggestedQuantity(snapshot, onOrder[snapshot.MaterialID])
		if qty <= 0 {
			continue
		}
		suggestions = append(suggestions, &models.ReorderSuggestion{
			MaterialID:         snapshot.MaterialID,
			Code:               snapshot.Code,
			Name:               snapshot.Name,
			SuggestedQuantity:  qty,
			Priority:           reorderPriority(snapshot),
			SupplierID:         snapshot.SupplierID,
			LeadTimeDays:       snapshot.LeadTimeDays,
			EstimatedCostCents: int64(qty) * prices[snapshot.MaterialID],
		})
	}
	return suggestions, nil
}
