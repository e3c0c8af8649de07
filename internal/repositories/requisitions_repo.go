package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"provender/internal/models"
)

type RequisitionRepository interface {
	Create(ctx context.Context, requisition *models.Requisition) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Requisition, error)
	Close(ctx context.Context, id uuid.UUID) error
}

type requisitionRepo struct {
	db TxDatabase
}

func NewRequisitionRepo(db TxDatabase) RequisitionRepository {
	return &requisitionRepo{db: db}
}

func (r *requisitionRepo) Create(ctx context.Context, requisition *models.Requisition) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO requisitions (id, reference, status, created_by, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, requisition.ID, requisition.Reference, requisition.Status, requisition.CreatedBy); err != nil {
			return err
		}

		lineQuery := `
			INSERT INTO requisition_lines (id, requisition_id, material_id, quantity)
			VALUES ($1, $2, $3, $4)
		`
		for _, line := range requisition.Lines {
			if _, err := tx.Exec(ctx, lineQuery, line.ID, line.RequisitionID,
				line.MaterialID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *requisitionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Requisition, error) {
	requisition := &models.Requisition{}
	err := r.db.QueryRow(ctx, `
		SELECT id, reference, status, created_by, closed_at, created_at
		FROM requisitions
		WHERE id = $1
	`, id).Scan(&requisition.ID, &requisition.Reference, &requisition.Status,
		&requisition.CreatedBy, &requisition.ClosedAt, &requisition.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, requisition_id, material_id, quantity
		FROM requisition_lines
		WHERE requisition_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line := &models.RequisitionLine{}
		if err := rows.Scan(&line.ID, &line.RequisitionID, &line.MaterialID, &line.Quantity); err != nil {
			return nil, err
		}
		requisition.Lines = append(requisition.Lines, line)
	}
	return requisition, rows.Err()
}

func (r *requisitionRepo) Close(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE requisitions SET status = 'CLOSED', closed_at = NOW() WHERE id = $1 AND status = 'OPEN'`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
