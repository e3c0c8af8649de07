package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"provender/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type MaterialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Material, error)
	Update(ctx context.Context, material *models.Material) error
	List(ctx context.Context, limit, offset int) ([]*models.Material, error)
	ListTracked(ctx context.Context) ([]*models.Material, error)
	UpdateDerived(ctx context.Context, id uuid.UUID, stock float64, state models.RiskState, recipeUsage int) error
}

type materialRepo struct {
	db Database
}

func NewMaterialRepo(db Database) MaterialRepository {
	return &materialRepo{db: db}
}

const materialColumns = `id, code, name, unit, current_stock, min_stock, safety_threshold, order_threshold,
		lead_time_days, avg_daily_consumption, criticality, supplier_id, stock_tracked,
		active_recipe_usage, risk_state, active, created_at, updated_at`

func scanMaterial(row rowScanner, m *models.Material) error {
	return row.Scan(&m.ID, &m.Code, &m.Name, &m.Unit, &m.CurrentStock, &m.MinStock,
		&m.SafetyThreshold, &m.OrderThreshold, &m.LeadTimeDays, &m.AvgDailyConsumption,
		&m.Criticality, &m.SupplierID, &m.StockTracked, &m.ActiveRecipeUsage,
		&m.RiskState, &m.Active, &m.CreatedAt, &m.UpdatedAt)
}

func (r *materialRepo) Create(ctx context.Context, material *models.Material) error {
	query := `
		INSERT INTO materials (id, code, name, unit, current_stock, min_stock, safety_threshold, order_threshold,
			lead_time_days, avg_daily_consumption, criticality, supplier_id, stock_tracked,
			active_recipe_usage, risk_state, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, material.ID, material.Code, material.Name, material.Unit,
		material.CurrentStock, material.MinStock, material.SafetyThreshold, material.OrderThreshold,
		material.LeadTimeDays, material.AvgDailyConsumption, material.Criticality, material.SupplierID,
		material.StockTracked, material.ActiveRecipeUsage, material.RiskState, material.Active)
	return err
}

func (r *materialRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	material := &models.Material{}
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	if err := scanMaterial(r.db.QueryRow(ctx, query, id), material); err != nil {
		return nil, err
	}
	return material, nil
}

func (r *materialRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaterials(rows)
}

func (r *materialRepo) Update(ctx context.Context, material *models.Material) error {
	query := `
		UPDATE materials
		SET code = $1, name = $2, unit = $3, min_stock = $4, safety_threshold = $5, order_threshold = $6,
			lead_time_days = $7, avg_daily_consumption = $8, criticality = $9, supplier_id = $10,
			stock_tracked = $11, active = $12, updated_at = NOW()
		WHERE id = $13
	`
	_, err := r.db.Exec(ctx, query, material.Code, material.Name, material.Unit, material.MinStock,
		material.SafetyThreshold, material.OrderThreshold, material.LeadTimeDays,
		material.AvgDailyConsumption, material.Criticality, material.SupplierID,
		material.StockTracked, material.Active, material.ID)
	return err
}

func (r *materialRepo) List(ctx context.Context, limit, offset int) ([]*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaterials(rows)
}

func (r *materialRepo) ListTracked(ctx context.Context) ([]*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE active AND stock_tracked ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaterials(rows)
}

// UpdateDerived refreshes the cached figures recomputed from the ledger.
func (r *materialRepo) UpdateDerived(ctx context.Context, id uuid.UUID, stock float64, state models.RiskState, recipeUsage int) error {
	query := `
		UPDATE materials
		SET current_stock = $1, risk_state = $2, active_recipe_usage = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, stock, state, recipeUsage, id)
	return err
}

func collectMaterials(rows pgx.Rows) ([]*models.Material, error) {
	var materials []*models.Material
	for rows.Next() {
		material := &models.Material{}
		if err := scanMaterial(rows, material); err != nil {
			return nil, err
		}
		materials = append(materials, material)
	}
	return materials, rows.Err()
}
