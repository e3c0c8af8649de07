package services

import (
	"context"

	"github.com/google/uuid"

	"provender/internal/models"
	"provender/internal/repositories"
)

// ComputeSupplierGrade bands the late-delivery rate.
func ComputeSupplierGrade(delayRate float64) models.SupplierGrade {
	switch {
	case delayRate < 0.05:
		return models.GradeA
	case delayRate < 0.15:
		return models.GradeB
	case delayRate < 0.30:
		return models.GradeC
	default:
		return models.GradeD
	}
}

type SupplierService interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	ListActive(ctx context.Context) ([]*models.Supplier, error)
	Performance(ctx context.Context, id uuid.UUID) (*models.SupplierPerformance, error)
}

type supplierService struct {
	supplierRepo repositories.SupplierRepository
}

func NewSupplierService(supplierRepo repositories.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

func (s *supplierService) Create(ctx context.Context, supplier *models.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	if supplier.Grade == "" {
		supplier.Grade = models.GradeA
	}
	return s.supplierRepo.Create(ctx, supplier)
}

func (s *supplierService) GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	return s.supplierRepo.GetByID(ctx, id)
}

func (s *supplierService) Update(ctx context.Context, supplier *models.Supplier) error {
	return s.supplierRepo.Update(ctx, supplier)
}

func (s *supplierService) ListActive(ctx context.Context) ([]*models.Supplier, error) {
	return s.supplierRepo.ListActive(ctx)
}

func (s *supplierService) Performance(ctx context.Context, id uuid.UUID) (*models.SupplierPerformance, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rate := supplier.DelayRate()
	return &models.SupplierPerformance{
		SupplierID:      supplier.ID,
		Name:            supplier.Name,
		Grade:           supplier.Grade,
		ComputedGrade:   ComputeSupplierGrade(rate),
		DelayRate:       rate,
		DeliveriesTotal: supplier.DeliveriesTotal,
		DeliveriesLate:  supplier.DeliveriesLate,
	}, nil
}
