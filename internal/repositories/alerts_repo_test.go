package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"provender/internal/models"
)

type AlertsRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       AlertsRepository
	materialID uuid.UUID
	actorID    uuid.UUID
	context    context.Context
}

func (suite *AlertsRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAlertsRepo(mock)
	suite.materialID = uuid.New()
	suite.actorID = uuid.New()
	suite.context = context.Background()
}

func (suite *AlertsRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestAlertsRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AlertsRepoTestSuite))
}

func (suite *AlertsRepoTestSuite) stockOutAlert() *models.Alert {
	return &models.Alert{
		ID:         uuid.New(),
		Type:       models.AlertStockOut,
		Severity:   models.SeverityCritical,
		EntityType: models.AlertEntityMaterial,
		EntityID:   suite.materialID.String(),
		Message:    "flour T55 is out of stock",
	}
}

func (suite *AlertsRepoTestSuite) TestInsert_NewAlert() {
	alert := suite.stockOutAlert()

	suite.mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs(alert.ID, alert.Type, alert.Severity, alert.EntityType,
			alert.EntityID, alert.Message, alert.Metadata).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := suite.repo.Insert(suite.context, alert)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), inserted)
}

func (suite *AlertsRepoTestSuite) TestInsert_DuplicateActiveAlertSwallowed() {
	alert := suite.stockOutAlert()

	suite.mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs(alert.ID, alert.Type, alert.Severity, alert.EntityType,
			alert.EntityID, alert.Message, alert.Metadata).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := suite.repo.Insert(suite.context, alert)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), inserted)
}

func (suite *AlertsRepoTestSuite) TestFindActive_MissReturnsNil() {
	suite.mock.ExpectQuery(`FROM alerts`).
		WithArgs(models.AlertStockOut, models.AlertEntityMaterial, suite.materialID.String()).
		WillReturnError(pgx.ErrNoRows)

	alert, err := suite.repo.FindActive(suite.context, models.AlertStockOut,
		models.AlertEntityMaterial, suite.materialID.String())
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), alert)
}

func (suite *AlertsRepoTestSuite) TestFindActive_Hit() {
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "type", "severity", "entity_type", "entity_id", "message", "metadata",
		"acknowledged_at", "acknowledged_by", "postponed_until", "postpone_reason", "created_at"}).
		AddRow(id, models.AlertStockOut, models.SeverityCritical, models.AlertEntityMaterial,
			suite.materialID.String(), "flour T55 is out of stock", models.JSONB(nil),
			nil, nil, nil, nil, time.Now())

	suite.mock.ExpectQuery(`FROM alerts`).
		WithArgs(models.AlertStockOut, models.AlertEntityMaterial, suite.materialID.String()).
		WillReturnRows(rows)

	alert, err := suite.repo.FindActive(suite.context, models.AlertStockOut,
		models.AlertEntityMaterial, suite.materialID.String())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, alert.ID)
	assert.True(suite.T(), alert.Active())
}

func (suite *AlertsRepoTestSuite) TestAcknowledge_Success() {
	id := uuid.New()
	at := time.Now()

	suite.mock.ExpectExec(`UPDATE alerts SET acknowledged_at`).
		WithArgs(at, suite.actorID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Acknowledge(suite.context, id, suite.actorID, at)
	assert.NoError(suite.T(), err)
}

func (suite *AlertsRepoTestSuite) TestAcknowledge_AlreadyAcknowledged() {
	id := uuid.New()
	at := time.Now()

	suite.mock.ExpectExec(`UPDATE alerts SET acknowledged_at`).
		WithArgs(at, suite.actorID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.Acknowledge(suite.context, id, suite.actorID, at)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *AlertsRepoTestSuite) TestCountPostponementsSince() {
	since := time.Now().AddDate(0, 0, -7)

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM alert_postponements`).
		WithArgs(suite.materialID, since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := suite.repo.CountPostponementsSince(suite.context, suite.materialID, since)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}

func (suite *AlertsRepoTestSuite) TestStampPostponement_AtomicWithLedger() {
	until := time.Now().Add(4 * time.Hour)
	postponement := &models.AlertPostponement{
		ID:         uuid.New(),
		MaterialID: suite.materialID,
		Duration:   4 * time.Hour,
		Reason:     "replacement delivery confirmed for tomorrow",
		ActorID:    suite.actorID,
	}
	audit := &models.AuditLog{
		ID:        uuid.New(),
		TableName: "alerts",
		RecordID:  suite.materialID.String(),
		Action:    models.ActionUpdate,
		ChangedBy: &suite.actorID,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE alerts SET postponed_until`).
		WithArgs(until, postponement.Reason, models.AlertEntityMaterial, suite.materialID.String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	suite.mock.ExpectExec(`INSERT INTO alert_postponements`).
		WithArgs(postponement.ID, postponement.MaterialID, postponement.Duration,
			postponement.Reason, postponement.ActorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(audit.ID, audit.TableName, audit.RecordID, audit.Action,
			audit.OldValues, audit.NewValues, audit.ChangedBy).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.StampPostponement(suite.context, suite.materialID, until, postponement, audit)
	assert.NoError(suite.T(), err)
}

func (suite *AlertsRepoTestSuite) TestCounts() {
	suite.mock.ExpectQuery(`FROM alerts`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "count"}).AddRow(5, 2))

	counts, err := suite.repo.Counts(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, counts.Active)
	assert.Equal(suite.T(), 2, counts.Critical)
}
