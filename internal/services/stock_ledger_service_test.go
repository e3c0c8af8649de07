package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"provender/internal/caching"
	"provender/internal/models"
	"provender/internal/repositories"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestComputeRiskState(t *testing.T) {
	base := func() *models.Material {
		return &models.Material{
			MinStock:        100,
			SafetyThreshold: floatPtr(50),
			OrderThreshold:  floatPtr(150),
			Criticality:     models.CriticalityMedium,
		}
	}

	tests := []struct {
		name     string
		stock    float64
		mutate   func(*models.Material)
		inRecipe bool
		want     models.RiskState
	}{
		{name: "zero stock without recipe usage", stock: 0, want: models.RiskOutOfStock},
		{name: "zero stock used in active recipe", stock: 0, inRecipe: true, want: models.RiskBlocking},
		{name: "zero stock with blocking criticality", stock: 0,
			mutate: func(m *models.Material) { m.Criticality = models.CriticalityBlocking },
			want:   models.RiskBlocking},
		{name: "stock exactly on order threshold", stock: 150, want: models.RiskToOrder},
		{name: "negative stock behaves like zero", stock: -5, want: models.RiskOutOfStock},
		{name: "blocking criticality below safety", stock: 40,
			mutate: func(m *models.Material) { m.Criticality = models.CriticalityBlocking },
			want:   models.RiskBlocking},
		{name: "below safety when order threshold sits lower", stock: 70,
			mutate: func(m *models.Material) { m.OrderThreshold = floatPtr(40); m.SafetyThreshold = nil },
			want:   models.RiskBelowSafety},
		{name: "healthy above every threshold", stock: 500, want: models.RiskHealthy},
		{name: "fallback thresholds from min stock", stock: 140,
			mutate: func(m *models.Material) { m.SafetyThreshold = nil; m.OrderThreshold = nil },
			want:   models.RiskToOrder}, // effOrder = round(100*1.5) = 150
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			if tt.mutate != nil {
				tt.mutate(m)
			}
			got := ComputeRiskState(tt.stock, m, tt.inRecipe, 1.5)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeRiskState_IsPure(t *testing.T) {
	m := &models.Material{MinStock: 100, Criticality: models.CriticalityHigh}
	first := ComputeRiskState(42, m, false, 1.5)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeRiskState(42, m, false, 1.5))
	}
}

func TestEffectiveCriticality(t *testing.T) {
	tests := []struct {
		manual models.Criticality
		usage  int
		want   models.Criticality
	}{
		{models.CriticalityLow, 0, models.CriticalityLow},
		{models.CriticalityLow, 1, models.CriticalityMedium},
		{models.CriticalityLow, 2, models.CriticalityHigh},
		{models.CriticalityLow, 3, models.CriticalityBlocking},
		{models.CriticalityLow, 7, models.CriticalityBlocking},
		// Manual level is never lowered by low usage.
		{models.CriticalityBlocking, 0, models.CriticalityBlocking},
		{models.CriticalityHigh, 1, models.CriticalityHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EffectiveCriticality(tt.manual, tt.usage))
	}
}

func TestCoverageDays(t *testing.T) {
	assert.Nil(t, CoverageDays(100, nil))
	assert.Nil(t, CoverageDays(100, floatPtr(0)))
	assert.Nil(t, CoverageDays(100, floatPtr(-2)))

	days := CoverageDays(100, floatPtr(8))
	assert.NotNil(t, days)
	assert.InDelta(t, 12.5, *days, 1e-9)
}

type StockLedgerServiceTestSuite struct {
	suite.Suite
	materialRepo *repositories.MockMaterialRepository
	movementRepo *repositories.MockStockMovementRepository
	recipeRepo   *repositories.MockRecipeRepository
	auditRepo    *repositories.MockAuditLogsRepository
	cache        *caching.MockCacheService
	service      StockLedgerService
	ctx          context.Context
}

func (suite *StockLedgerServiceTestSuite) SetupTest() {
	suite.materialRepo = &repositories.MockMaterialRepository{}
	suite.movementRepo = &repositories.MockStockMovementRepository{}
	suite.recipeRepo = &repositories.MockRecipeRepository{}
	suite.auditRepo = &repositories.MockAuditLogsRepository{}
	suite.cache = &caching.MockCacheService{}
	suite.service = NewStockLedgerService(suite.materialRepo, suite.movementRepo,
		suite.recipeRepo, suite.auditRepo, suite.cache, 1.5, 0)
	suite.ctx = context.Background()
}

func TestStockLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StockLedgerServiceTestSuite))
}

func (suite *StockLedgerServiceTestSuite) TestRecordMovement_RejectsNonPositiveQuantity() {
	err := suite.service.RecordMovement(suite.ctx, &models.StockMovement{
		MaterialID: uuid.New(),
		Direction:  models.MovementIn,
		Quantity:   0,
	})
	assert.Error(suite.T(), err)
	suite.movementRepo.AssertNotCalled(suite.T(), "Insert", mock.Anything, mock.Anything)
}

func (suite *StockLedgerServiceTestSuite) TestRecordMovement_InsertsAndInvalidates() {
	movement := &models.StockMovement{
		MaterialID: uuid.New(),
		Direction:  models.MovementOut,
		Quantity:   3,
		OriginRef:  "production:batch-9",
	}

	suite.movementRepo.On("Insert", suite.ctx, movement).Return(nil)
	suite.cache.On("InvalidateRisk", suite.ctx).Return(nil)

	err := suite.service.RecordMovement(suite.ctx, movement)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, movement.ID)
	assert.False(suite.T(), movement.MovedAt.IsZero())
	suite.movementRepo.AssertExpectations(suite.T())
}

func (suite *StockLedgerServiceTestSuite) TestRecomputeDerived_RefreshesEveryTrackedMaterial() {
	idA := uuid.New()
	idB := uuid.New()
	materials := []*models.Material{
		{ID: idA, Code: "FLR-T55", MinStock: 100, Criticality: models.CriticalityMedium},
		{ID: idB, Code: "SALT", MinStock: 10, Criticality: models.CriticalityLow},
	}

	suite.materialRepo.On("ListTracked", suite.ctx).Return(materials, nil)
	suite.movementRepo.On("SumByMaterialIDs", suite.ctx, []uuid.UUID{idA, idB}).
		Return(map[uuid.UUID]float64{idA: 0, idB: 500}, nil)
	suite.recipeRepo.On("CountActiveUsage", suite.ctx, []uuid.UUID{idA, idB}).
		Return(map[uuid.UUID]int{idA: 2, idB: 0}, nil)
	suite.materialRepo.On("UpdateDerived", suite.ctx, idA, 0.0, models.RiskBlocking, 2).Return(nil)
	suite.materialRepo.On("UpdateDerived", suite.ctx, idB, 500.0, models.RiskHealthy, 0).Return(nil)
	suite.cache.On("InvalidateRisk", suite.ctx).Return(nil)

	refreshed, err := suite.service.RecomputeDerived(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, refreshed)
	suite.materialRepo.AssertExpectations(suite.T())
}

func (suite *StockLedgerServiceTestSuite) TestRiskSnapshots_CacheMissBuildsAndStores() {
	id := uuid.New()
	materials := []*models.Material{{
		ID:                  id,
		Code:                "YST-01",
		Name:                "fresh yeast",
		Unit:                "kg",
		MinStock:            20,
		LeadTimeDays:        3,
		AvgDailyConsumption: floatPtr(4),
		Criticality:         models.CriticalityHigh,
	}}

	suite.cache.On("GetRiskSnapshots", suite.ctx).Return(nil, nil)
	suite.materialRepo.On("ListTracked", suite.ctx).Return(materials, nil)
	suite.movementRepo.On("SumByMaterialIDs", suite.ctx, []uuid.UUID{id}).
		Return(map[uuid.UUID]float64{id: 40}, nil)
	suite.recipeRepo.On("CountActiveUsage", suite.ctx, []uuid.UUID{id}).
		Return(map[uuid.UUID]int{id: 1}, nil)
	suite.cache.On("SetRiskSnapshots", suite.ctx, mock.Anything, mock.Anything).Return(nil)

	snapshots, err := suite.service.RiskSnapshots(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), snapshots, 1)
	assert.Equal(suite.T(), models.RiskHealthy, snapshots[0].RiskState)
	assert.Equal(suite.T(), models.CriticalityHigh, snapshots[0].EffectiveCriticality)
	assert.InDelta(suite.T(), 10.0, *snapshots[0].CoverageDays, 1e-9)
}
