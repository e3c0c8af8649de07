package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"provender/internal/models"
)

// Testify mocks for the repository interfaces, shared by the service tests.

type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Material), args.Error(1)
}

func (m *MockMaterialRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Material, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Material), args.Error(1)
}

func (m *MockMaterialRepository) Update(ctx context.Context, material *models.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) List(ctx context.Context, limit, offset int) ([]*models.Material, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Material), args.Error(1)
}

func (m *MockMaterialRepository) ListTracked(ctx context.Context) ([]*models.Material, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Material), args.Error(1)
}

func (m *MockMaterialRepository) UpdateDerived(ctx context.Context, id uuid.UUID, stock float64, state models.RiskState, recipeUsage int) error {
	args := m.Called(ctx, id, stock, state, recipeUsage)
	return args.Error(0)
}

type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) Insert(ctx context.Context, movement *models.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) SumByMaterialIDs(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	args := m.Called(ctx, materialIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]float64), args.Error(1)
}

func (m *MockStockMovementRepository) SumByOriginRef(ctx context.Context, originRef string) (float64, error) {
	args := m.Called(ctx, originRef)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStockMovementRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStockMovementRepository) ListByMaterial(ctx context.Context, materialID uuid.UUID, limit, offset int) ([]*models.StockMovement, error) {
	args := m.Called(ctx, materialID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StockMovement), args.Error(1)
}

type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) ListIngredients(ctx context.Context, recipeID uuid.UUID) ([]*models.RecipeIngredient, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RecipeIngredient), args.Error(1)
}

func (m *MockRecipeRepository) CountActiveUsage(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, materialIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockAlertsRepository struct {
	mock.Mock
}

func (m *MockAlertsRepository) Insert(ctx context.Context, alert *models.Alert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertsRepository) FindActive(ctx context.Context, alertType models.AlertType, entityType, entityID string) (*models.Alert, error) {
	args := m.Called(ctx, alertType, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertsRepository) Acknowledge(ctx context.Context, id uuid.UUID, actorID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, actorID, at)
	return args.Error(0)
}

func (m *MockAlertsRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Alert, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Alert), args.Error(1)
}

func (m *MockAlertsRepository) ListActiveByEntity(ctx context.Context, entityType, entityID string) ([]*models.Alert, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Alert), args.Error(1)
}

func (m *MockAlertsRepository) CountPostponementsSince(ctx context.Context, materialID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, materialID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockAlertsRepository) StampPostponement(ctx context.Context, materialID uuid.UUID, until time.Time, postponement *models.AlertPostponement, audit *models.AuditLog) error {
	args := m.Called(ctx, materialID, until, postponement, audit)
	return args.Error(0)
}

func (m *MockAlertsRepository) Counts(ctx context.Context) (*models.AlertCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AlertCounts), args.Error(1)
}

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) ListActive(ctx context.Context) ([]*models.Supplier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) UpdateGrade(ctx context.Context, id uuid.UUID, grade models.SupplierGrade) error {
	args := m.Called(ctx, id, grade)
	return args.Error(0)
}

type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *models.PurchaseOrder, audit *models.AuditLog) error {
	args := m.Called(ctx, order, audit)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) List(ctx context.Context, limit, offset int) ([]*models.PurchaseOrder, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ListOpenQuantities(ctx context.Context) (map[uuid.UUID]float64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]float64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) RecordTransition(ctx context.Context, rec *TransitionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) ReceiveOrder(ctx context.Context, bundle *ReceiptBundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) GetIdempotency(ctx context.Context, key string) (*models.OrderIdempotency, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderIdempotency), args.Error(1)
}

func (m *MockPurchaseOrderRepository) SetProofDocument(ctx context.Context, orderID uuid.UUID, objectKey string) error {
	args := m.Called(ctx, orderID, objectKey)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SetSendMessageID(ctx context.Context, orderID uuid.UUID, messageID string) error {
	args := m.Called(ctx, orderID, messageID)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) LastUnitPrices(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, materialIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) TryAdvisoryLock(ctx context.Context, id uuid.UUID, holder string, ttl time.Duration) (*models.LockStatus, error) {
	args := m.Called(ctx, id, holder, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LockStatus), args.Error(1)
}

type MockRequisitionRepository struct {
	mock.Mock
}

func (m *MockRequisitionRepository) Create(ctx context.Context, requisition *models.Requisition) error {
	args := m.Called(ctx, requisition)
	return args.Error(0)
}

func (m *MockRequisitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Requisition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Requisition), args.Error(1)
}

func (m *MockRequisitionRepository) Close(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
