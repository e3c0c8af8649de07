package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"provender/internal/models"
)

type AlertsRepository interface {
	// Insert relies on the partial unique index over active alerts; a
	// duplicate raise is swallowed and reported as inserted=false.
	Insert(ctx context.Context, alert *models.Alert) (bool, error)
	FindActive(ctx context.Context, alertType models.AlertType, entityType, entityID string) (*models.Alert, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID, actorID uuid.UUID, at time.Time) error
	ListActive(ctx context.Context, limit, offset int) ([]*models.Alert, error)
	ListActiveByEntity(ctx context.Context, entityType, entityID string) ([]*models.Alert, error)
	CountPostponementsSince(ctx context.Context, materialID uuid.UUID, since time.Time) (int, error)
	// StampPostponement stamps every active alert of the material and records
	// the rate-limit ledger entry in one transaction.
	StampPostponement(ctx context.Context, materialID uuid.UUID, until time.Time, postponement *models.AlertPostponement, audit *models.AuditLog) error
	Counts(ctx context.Context) (*models.AlertCounts, error)
}

type alertsRepo struct {
	db TxDatabase
}

func NewAlertsRepo(db TxDatabase) AlertsRepository {
	return &alertsRepo{db: db}
}

const alertColumns = `id, type, severity, entity_type, entity_id, message, metadata,
		acknowledged_at, acknowledged_by, postponed_until, postpone_reason, created_at`

func scanAlert(row rowScanner, a *models.Alert) error {
	return row.Scan(&a.ID, &a.Type, &a.Severity, &a.EntityType, &a.EntityID, &a.Message,
		&a.Metadata, &a.AcknowledgedAt, &a.AcknowledgedBy, &a.PostponedUntil,
		&a.PostponeReason, &a.CreatedAt)
}

func (r *alertsRepo) Insert(ctx context.Context, alert *models.Alert) (bool, error) {
	query := `
		INSERT INTO alerts (id, type, severity, entity_type, entity_id, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (type, entity_type, entity_id) WHERE acknowledged_at IS NULL DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, alert.ID, alert.Type, alert.Severity,
		alert.EntityType, alert.EntityID, alert.Message, alert.Metadata)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *alertsRepo) FindActive(ctx context.Context, alertType models.AlertType, entityType, entityID string) (*models.Alert, error) {
	alert := &models.Alert{}
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE type = $1 AND entity_type = $2 AND entity_id = $3 AND acknowledged_at IS NULL
	`
	err := scanAlert(r.db.QueryRow(ctx, query, alertType, entityType, entityID), alert)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return alert, nil
}

func (r *alertsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	alert := &models.Alert{}
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	if err := scanAlert(r.db.QueryRow(ctx, query, id), alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *alertsRepo) Acknowledge(ctx context.Context, id uuid.UUID, actorID uuid.UUID, at time.Time) error {
	query := `
		UPDATE alerts SET acknowledged_at = $1, acknowledged_by = $2
		WHERE id = $3 AND acknowledged_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, at, actorID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *alertsRepo) ListActive(ctx context.Context, limit, offset int) ([]*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE acknowledged_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *alertsRepo) ListActiveByEntity(ctx context.Context, entityType, entityID string) ([]*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE entity_type = $1 AND entity_id = $2 AND acknowledged_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *alertsRepo) CountPostponementsSince(ctx context.Context, materialID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM alert_postponements WHERE material_id = $1 AND created_at >= $2`
	if err := r.db.QueryRow(ctx, query, materialID, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *alertsRepo) StampPostponement(ctx context.Context, materialID uuid.UUID, until time.Time, postponement *models.AlertPostponement, audit *models.AuditLog) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE alerts SET postponed_until = $1, postpone_reason = $2
			WHERE entity_type = $3 AND entity_id = $4 AND acknowledged_at IS NULL
		`, until, postponement.Reason, models.AlertEntityMaterial, materialID.String()); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO alert_postponements (id, material_id, duration, reason, actor_id, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, postponement.ID, postponement.MaterialID, postponement.Duration,
			postponement.Reason, postponement.ActorID); err != nil {
			return err
		}

		return insertAuditLog(ctx, tx, audit)
	})
}

func (r *alertsRepo) Counts(ctx context.Context) (*models.AlertCounts, error) {
	counts := &models.AlertCounts{}
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE severity = 'CRITICAL')
		FROM alerts
		WHERE acknowledged_at IS NULL
	`
	if err := r.db.QueryRow(ctx, query).Scan(&counts.Active, &counts.Critical); err != nil {
		return nil, err
	}
	return counts, nil
}

func collectAlerts(rows pgx.Rows) ([]*models.Alert, error) {
	var alerts []*models.Alert
	for rows.Next() {
		alert := &models.Alert{}
		if err := scanAlert(rows, alert); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}
