package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"provender/internal/models"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	ListActive(ctx context.Context) ([]*models.Supplier, error)
	UpdateGrade(ctx context.Context, id uuid.UUID, grade models.SupplierGrade) error
}

type supplierRepo struct {
	db Database
}

func NewSupplierRepo(db Database) SupplierRepository {
	return &supplierRepo{db: db}
}

const supplierColumns = `id, name, email, lead_time_days, grade, deliveries_total, deliveries_late, active, created_at, updated_at`

func scanSupplier(row rowScanner, s *models.Supplier) error {
	return row.Scan(&s.ID, &s.Name, &s.Email, &s.LeadTimeDays, &s.Grade,
		&s.DeliveriesTotal, &s.DeliveriesLate, &s.Active, &s.CreatedAt, &s.UpdatedAt)
}

func (r *supplierRepo) Create(ctx context.Context, supplier *models.Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, email, lead_time_days, grade, deliveries_total, deliveries_late, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, supplier.ID, supplier.Name, supplier.Email,
		supplier.LeadTimeDays, supplier.Grade, supplier.DeliveriesTotal,
		supplier.DeliveriesLate, supplier.Active)
	return err
}

func (r *supplierRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier := &models.Supplier{}
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	if err := scanSupplier(r.db.QueryRow(ctx, query, id), supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *supplierRepo) Update(ctx context.Context, supplier *models.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $1, email = $2, lead_time_days = $3, active = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, supplier.Name, supplier.Email,
		supplier.LeadTimeDays, supplier.Active, supplier.ID)
	return err
}

func (r *supplierRepo) ListActive(ctx context.Context) ([]*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE active ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSuppliers(rows)
}

func (r *supplierRepo) UpdateGrade(ctx context.Context, id uuid.UUID, grade models.SupplierGrade) error {
	query := `UPDATE suppliers SET grade = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, grade, id)
	return err
}

func collectSuppliers(rows pgx.Rows) ([]*models.Supplier, error) {
	var suppliers []*models.Supplier
	for rows.Next() {
		supplier := &models.Supplier{}
		if err := scanSupplier(rows, supplier); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}
