package repositories

import (
	"context"

	"github.com/google/uuid"

	"provender/internal/models"
)

type StockMovementRepository interface {
	Insert(ctx context.Context, movement *models.StockMovement) error
	// SumByMaterialIDs aggregates signed quantities over non-deleted rows in a
	// single grouped query; the production-gating hot path depends on this
	// staying one round trip.
	SumByMaterialIDs(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]float64, error)
	SumByOriginRef(ctx context.Context, originRef string) (float64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListByMaterial(ctx context.Context, materialID uuid.UUID, limit, offset int) ([]*models.StockMovement, error)
}

type stockMovementRepo struct {
	db Database
}

func NewStockMovementRepo(db Database) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) Insert(ctx context.Context, movement *models.StockMovement) error {
	return insertMovement(ctx, r.db, movement)
}

// insertMovement is shared with the purchase-order reception transaction.
func insertMovement(ctx context.Context, q Database, movement *models.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, material_id, direction, quantity, moved_at, origin_ref, deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NOW())
	`
	_, err := q.Exec(ctx, query, movement.ID, movement.MaterialID, movement.Direction,
		movement.Quantity, movement.MovedAt, movement.OriginRef)
	return err
}

func (r *stockMovementRepo) SumByMaterialIDs(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	query := `
		SELECT material_id,
			COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements
		WHERE NOT deleted AND material_id = ANY($1)
		GROUP BY material_id
	`
	rows, err := r.db.Query(ctx, query, materialIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := make(map[uuid.UUID]float64, len(materialIDs))
	for rows.Next() {
		var id uuid.UUID
		var sum float64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, err
		}
		stocks[id] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Materials without any movement have zero stock, not a missing entry.
	for _, id := range materialIDs {
		if _, ok := stocks[id]; !ok {
			stocks[id] = 0
		}
	}
	return stocks, nil
}

func (r *stockMovementRepo) SumByOriginRef(ctx context.Context, originRef string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements
		WHERE NOT deleted AND origin_ref = $1
	`
	var sum float64
	if err := r.db.QueryRow(ctx, query, originRef).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *stockMovementRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE stock_movements SET deleted = true WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *stockMovementRepo) ListByMaterial(ctx context.Context, materialID uuid.UUID, limit, offset int) ([]*models.StockMovement, error) {
	query := `
		SELECT id, material_id, direction, quantity, moved_at, origin_ref, deleted, created_at
		FROM stock_movements
		WHERE material_id = $1 AND NOT deleted
		ORDER BY moved_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, materialID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.StockMovement
	for rows.Next() {
		movement := &models.StockMovement{}
		if err := rows.Scan(&movement.ID, &movement.MaterialID, &movement.Direction, &movement.Quantity,
			&movement.MovedAt, &movement.OriginRef, &movement.Deleted, &movement.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}
