package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"provender/internal/apperrors"
	"provender/internal/caching"
	"provender/internal/models"
	"provender/internal/repositories"
)

type ProductionGateServiceTestSuite struct {
	suite.Suite
	recipeRepo   *repositories.MockRecipeRepository
	materialRepo *repositories.MockMaterialRepository
	movementRepo *repositories.MockStockMovementRepository
	alertsRepo   *repositories.MockAlertsRepository
	service      ProductionGateService
	recipeID     uuid.UUID
	flourID      uuid.UUID
	yeastID      uuid.UUID
	ctx          context.Context
}

func (suite *ProductionGateServiceTestSuite) SetupTest() {
	suite.recipeRepo = &repositories.MockRecipeRepository{}
	suite.materialRepo = &repositories.MockMaterialRepository{}
	suite.movementRepo = &repositories.MockStockMovementRepository{}
	suite.alertsRepo = &repositories.MockAlertsRepository{}

	ledger := NewStockLedgerService(suite.materialRepo, suite.movementRepo,
		suite.recipeRepo, &repositories.MockAuditLogsRepository{}, &caching.MockCacheService{}, 1.5, 0)
	alerts := NewAlertService(suite.alertsRepo, suite.materialRepo,
		&repositories.MockSupplierRepository{}, &repositories.MockAuditLogsRepository{}, ledger, 2)
	suite.service = NewProductionGateService(suite.recipeRepo, suite.materialRepo, ledger, alerts)
	suite.recipeID = uuid.New()
	suite.flourID = uuid.New()
	suite.yeastID = uuid.New()
	suite.ctx = context.Background()
}

func TestProductionGateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductionGateServiceTestSuite))
}

func (suite *ProductionGateServiceTestSuite) recipe() *models.Recipe {
	return &models.Recipe{ID: suite.recipeID, Name: "sourdough batard", Active: true}
}

func (suite *ProductionGateServiceTestSuite) ingredients() []*models.RecipeIngredient {
	return []*models.RecipeIngredient{
		{RecipeID: suite.recipeID, MaterialID: suite.flourID, PerBatchQuantity: 12.5, Mandatory: true, StockAffecting: true},
		{RecipeID: suite.recipeID, MaterialID: suite.yeastID, PerBatchQuantity: 0.4, Mandatory: true, StockAffecting: true},
	}
}

func (suite *ProductionGateServiceTestSuite) TestCanStart_RejectsNonPositiveBatchCount() {
	_, err := suite.service.CanStart(suite.ctx, suite.recipeID, 0)
	var validation *apperrors.ValidationError
	assert.ErrorAs(suite.T(), err, &validation)
}

func (suite *ProductionGateServiceTestSuite) TestCanStart_EmptyRecipeAlwaysStarts() {
	suite.recipeRepo.On("GetByID", suite.ctx, suite.recipeID).Return(suite.recipe(), nil)
	suite.recipeRepo.On("ListIngredients", suite.ctx, suite.recipeID).
		Return([]*models.RecipeIngredient{}, nil)

	result, err := suite.service.CanStart(suite.ctx, suite.recipeID, 3)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.CanStart)
	assert.Empty(suite.T(), result.Blockers)
}

func (suite *ProductionGateServiceTestSuite) TestCanStart_EnoughStock() {
	suite.recipeRepo.On("GetByID", suite.ctx, suite.recipeID).Return(suite.recipe(), nil)
	suite.recipeRepo.On("ListIngredients", suite.ctx, suite.recipeID).
		Return(suite.ingredients(), nil)
	suite.movementRepo.On("SumByMaterialIDs", suite.ctx, []uuid.UUID{suite.flourID, suite.yeastID}).
		Return(map[uuid.UUID]float64{suite.flourID: 50, suite.yeastID: 4}, nil)
	suite.materialRepo.On("GetByIDs", suite.ctx, []uuid.UUID{suite.flourID, suite.yeastID}).
		Return([]*models.Material{{ID: suite.flourID}, {ID: suite.yeastID}}, nil)

	// 3 batches: ceil(12.5*3)=38 flour, ceil(0.4*3)=2 yeast.
	result, err := suite.service.CanStart(suite.ctx, suite.recipeID, 3)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.CanStart)
	suite.alertsRepo.AssertNotCalled(suite.T(), "Insert", mock.Anything, mock.Anything)
}

func (suite *ProductionGateServiceTestSuite) TestCanStart_ShortageBlocksAndRaisesAlert() {
	suite.recipeRepo.On("GetByID", suite.ctx, suite.recipeID).Return(suite.recipe(), nil)
	suite.recipeRepo.On("ListIngredients", suite.ctx, suite.recipeID).
		Return(suite.ingredients(), nil)
	suite.movementRepo.On("SumByMaterialIDs", suite.ctx, []uuid.UUID{suite.flourID, suite.yeastID}).
		Return(map[uuid.UUID]float64{suite.flourID: 30, suite.yeastID: 4}, nil)
	suite.materialRepo.On("GetByIDs", suite.ctx, []uuid.UUID{suite.flourID, suite.yeastID}).
		Return([]*models.Material{
			{ID: suite.flourID, Code: "FLR-T55", Name: "flour T55"},
			{ID: suite.yeastID, Code: "YST-01", Name: "fresh yeast"},
		}, nil)
	suite.alertsRepo.On("Insert", suite.ctx, mock.MatchedBy(func(alert *models.Alert) bool {
		return alert.Type == models.AlertProductionBlocked &&
			alert.EntityID == suite.recipeID.String()
	})).Return(true, nil)

	result, err := suite.service.CanStart(suite.ctx, suite.recipeID, 3)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.CanStart)
	assert.Len(suite.T(), result.Blockers, 1)
	assert.Equal(suite.T(), suite.flourID, result.Blockers[0].MaterialID)
	assert.Equal(suite.T(), 38.0, result.Blockers[0].Required)
	assert.Equal(suite.T(), 30.0, result.Blockers[0].Available)
	assert.Equal(suite.T(), 8.0, result.Blockers[0].Shortage)
	suite.alertsRepo.AssertExpectations(suite.T())
}

func (suite *ProductionGateServiceTestSuite) TestCanStart_UnknownRecipe() {
	suite.recipeRepo.On("GetByID", suite.ctx, suite.recipeID).
		Return(nil, assert.AnError)

	_, err := suite.service.CanStart(suite.ctx, suite.recipeID, 1)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(suite.T(), err, &notFound)
}
