package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"provender/internal/models"
)

type StockMovementRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       StockMovementRepository
	materialID uuid.UUID
	context    context.Context
}

func (suite *StockMovementRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewStockMovementRepo(mock)
	suite.materialID = uuid.New()
	suite.context = context.Background()
}

func (suite *StockMovementRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestStockMovementRepoTestSuite(t *testing.T) {
	suite.Run(t, new(StockMovementRepoTestSuite))
}

func (suite *StockMovementRepoTestSuite) TestInsert_Success() {
	movement := &models.StockMovement{
		ID:         uuid.New(),
		MaterialID: suite.materialID,
		Direction:  models.MovementIn,
		Quantity:   40,
		MovedAt:    time.Now(),
		OriginRef:  "reception:PO-2026-0004",
	}

	suite.mock.ExpectExec(`INSERT INTO stock_movements`).
		WithArgs(movement.ID, movement.MaterialID, movement.Direction,
			movement.Quantity, movement.MovedAt, movement.OriginRef).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Insert(suite.context, movement)
	assert.NoError(suite.T(), err)
}

func (suite *StockMovementRepoTestSuite) TestSumByMaterialIDs_SignsAndGroups() {
	otherID := uuid.New()
	ids := []uuid.UUID{suite.materialID, otherID}

	rows := pgxmock.NewRows([]string{"material_id", "coalesce"}).
		AddRow(suite.materialID, 120.5).
		AddRow(otherID, -3.0)

	suite.mock.ExpectQuery(`SELECT material_id,`).
		WithArgs(ids).
		WillReturnRows(rows)

	stocks, err := suite.repo.SumByMaterialIDs(suite.context, ids)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 120.5, stocks[suite.materialID])
	assert.Equal(suite.T(), -3.0, stocks[otherID])
}

func (suite *StockMovementRepoTestSuite) TestSumByMaterialIDs_MissingMaterialIsZero() {
	neverMoved := uuid.New()
	ids := []uuid.UUID{suite.materialID, neverMoved}

	rows := pgxmock.NewRows([]string{"material_id", "coalesce"}).
		AddRow(suite.materialID, 12.0)

	suite.mock.ExpectQuery(`SELECT material_id,`).
		WithArgs(ids).
		WillReturnRows(rows)

	stocks, err := suite.repo.SumByMaterialIDs(suite.context, ids)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), stocks, 2)
	assert.Equal(suite.T(), 0.0, stocks[neverMoved])
}

func (suite *StockMovementRepoTestSuite) TestSumByMaterialIDs_DatabaseError() {
	ids := []uuid.UUID{suite.materialID}

	suite.mock.ExpectQuery(`SELECT material_id,`).
		WithArgs(ids).
		WillReturnError(errors.New("connection reset"))

	stocks, err := suite.repo.SumByMaterialIDs(suite.context, ids)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), stocks)
}

func (suite *StockMovementRepoTestSuite) TestSumByOriginRef_Success() {
	rows := pgxmock.NewRows([]string{"coalesce"}).AddRow(75.0)

	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN direction = 'IN'`).
		WithArgs("reception:PO-2026-0004").
		WillReturnRows(rows)

	sum, err := suite.repo.SumByOriginRef(suite.context, "reception:PO-2026-0004")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 75.0, sum)
}

func (suite *StockMovementRepoTestSuite) TestSoftDelete_Success() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE stock_movements SET deleted = true WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.SoftDelete(suite.context, id)
	assert.NoError(suite.T(), err)
}

func (suite *StockMovementRepoTestSuite) TestListByMaterial_ExcludesDeleted() {
	rows := pgxmock.NewRows([]string{"id", "material_id", "direction", "quantity", "moved_at", "origin_ref", "deleted", "created_at"}).
		AddRow(uuid.New(), suite.materialID, models.MovementOut, 5.0, time.Now(), "production:batch-12", false, time.Now())

	suite.mock.ExpectQuery(`FROM stock_movements`).
		WithArgs(suite.materialID, 20, 0).
		WillReturnRows(rows)

	movements, err := suite.repo.ListByMaterial(suite.context, suite.materialID, 20, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), movements, 1)
	assert.Equal(suite.T(), models.MovementOut, movements[0].Direction)
}
