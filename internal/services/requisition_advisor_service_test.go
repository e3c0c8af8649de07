package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provender/internal/caching"
	"provender/internal/models"
	"provender/internal/repositories"
)

func TestSuggestedQuantity(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *models.MaterialRiskSnapshot
		onOrder  float64
		want     float64
	}{
		{
			name: "order threshold plus lead time consumption",
			snapshot: &models.MaterialRiskSnapshot{
				EffectiveOrder:      150,
				LeadTimeDays:        5,
				AvgDailyConsumption: floatPtr(8),
				CurrentStock:        60,
			},
			want: 130, // 150 + 5*8 - 60
		},
		{
			name: "stock already on order counts against the need",
			snapshot: &models.MaterialRiskSnapshot{
				EffectiveOrder:      150,
				LeadTimeDays:        5,
				AvgDailyConsumption: floatPtr(8),
				CurrentStock:        60,
			},
			onOrder: 100,
			want:    30,
		},
		{
			name: "fractional need rounds up",
			snapshot: &models.MaterialRiskSnapshot{
				EffectiveOrder:      100,
				LeadTimeDays:        3,
				AvgDailyConsumption: floatPtr(2.5),
				CurrentStock:        40.2,
			},
			want: 68, // ceil(100 + 7.5 - 40.2)
		},
		{
			name: "well stocked never goes negative",
			snapshot: &models.MaterialRiskSnapshot{
				EffectiveOrder: 100,
				CurrentStock:   500,
			},
			want: 0,
		},
		{
			name: "unknown consumption treated as zero",
			snapshot: &models.MaterialRiskSnapshot{
				EffectiveOrder: 100,
				LeadTimeDays:   10,
				CurrentStock:   30,
			},
			want: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestedQuantity(tt.snapshot, tt.onOrder))
		})
	}
}

func TestReorderPriority(t *testing.T) {
	assert.Equal(t, models.ReorderUrgent,
		reorderPriority(&models.MaterialRiskSnapshot{RiskState: models.RiskBlocking}))
	assert.Equal(t, models.ReorderUrgent,
		reorderPriority(&models.MaterialRiskSnapshot{RiskState: models.RiskOutOfStock}))
	assert.Equal(t, models.ReorderHigh,
		reorderPriority(&models.MaterialRiskSnapshot{RiskState: models.RiskBelowSafety}))
	// Coverage shorter than the lead time escalates even when thresholds hold.
	assert.Equal(t, models.ReorderHigh,
		reorderPriority(&models.MaterialRiskSnapshot{
			RiskState:    models.RiskToOrder,
			CoverageDays: floatPtr(3),
			LeadTimeDays: 5,
		}))
	assert.Equal(t, models.ReorderNormal,
		reorderPriority(&models.MaterialRiskSnapshot{
			RiskState:    models.RiskHealthy,
			CoverageDays: floatPtr(30),
			LeadTimeDays: 5,
		}))
}

func TestSuggest_SkipsCoveredMaterials(t *testing.T) {
	ctx := context.Background()
	shortID := uuid.New()
	coveredID := uuid.New()
	supplierID := uuid.New()

	cache := &caching.MockCacheService{}
	cache.On("GetRiskSnapshots", ctx).Return([]*models.MaterialRiskSnapshot{
		{
			MaterialID:     shortID,
			Code:           "FLR-T55",
			Name:           "flour T55",
			EffectiveOrder: 150,
			CurrentStock:   60,
			RiskState:      models.RiskToOrder,
			LeadTimeDays:   5,
			SupplierID:     &supplierID,
		},
		{
			MaterialID:     coveredID,
			Code:           "SALT",
			EffectiveOrder: 10,
			CurrentStock:   500,
			RiskState:      models.RiskHealthy,
		},
	}, nil)

	orderRepo := &repositories.MockPurchaseOrderRepository{}
	orderRepo.On("ListOpenQuantities", ctx).Return(map[uuid.UUID]float64{shortID: 20}, nil)
	orderRepo.On("LastUnitPrices", ctx, mock.Anything).
		Return(map[uuid.UUID]int64{shortID: 900}, nil)

	ledger := NewStockLedgerService(&repositories.MockMaterialRepository{},
		&repositories.MockStockMovementRepository{}, &repositories.MockRecipeRepository{},
		&repositories.MockAuditLogsRepository{}, cache, 1.5, 0)
	service := NewRequisitionAdvisorService(ledger, orderRepo)

	suggestions, err := service.Suggest(ctx)
	assert.NoError(t, err)
	assert.Len(t, suggestions, 1)
	assert.Equal(t, shortID, suggestions[0].MaterialID)
	assert.Equal(t, 70.0, suggestions[0].SuggestedQuantity) // 150 - 60 - 20
	assert.Equal(t, int64(70*900), suggestions[0].EstimatedCostCents)
	assert.Equal(t, supplierID, *suggestions[0].SupplierID)
}
