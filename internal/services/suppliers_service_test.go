package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"provender/internal/models"
	"provender/internal/repositories"
)

func TestComputeSupplierGrade(t *testing.T) {
	tests := []struct {
		delayRate float64
		want      models.SupplierGrade
	}{
		{0, models.GradeA},
		{0.049, models.GradeA},
		{0.05, models.GradeB},
		{0.149, models.GradeB},
		{0.15, models.GradeC},
		{0.299, models.GradeC},
		{0.30, models.GradeD},
		{1, models.GradeD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeSupplierGrade(tt.delayRate), "rate %v", tt.delayRate)
	}
}

func TestSupplierCreate_DefaultsGrade(t *testing.T) {
	repo := &repositories.MockSupplierRepository{}
	service := NewSupplierService(repo)
	supplier := &models.Supplier{Name: "Millstone Grains"}
	repo.On("Create", context.Background(), supplier).Return(nil)

	err := service.Create(context.Background(), supplier)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, supplier.ID)
	assert.Equal(t, models.GradeA, supplier.Grade)
}

func TestSupplierPerformance(t *testing.T) {
	repo := &repositories.MockSupplierRepository{}
	service := NewSupplierService(repo)
	id := uuid.New()
	repo.On("GetByID", context.Background(), id).Return(&models.Supplier{
		ID:              id,
		Name:            "Millstone Grains",
		Grade:           models.GradeA,
		DeliveriesTotal: 20,
		DeliveriesLate:  4,
	}, nil)

	perf, err := service.Performance(context.Background(), id)
	assert.NoError(t, err)
	assert.InDelta(t, 0.2, perf.DelayRate, 1e-9)
	// The stored grade lags the counters until the next scan recomputes it.
	assert.Equal(t, models.GradeA, perf.Grade)
	assert.Equal(t, models.GradeC, perf.ComputedGrade)
}

func TestSupplierPerformance_NoDeliveries(t *testing.T) {
	repo := &repositories.MockSupplierRepository{}
	service := NewSupplierService(repo)
	id := uuid.New()
	repo.On("GetByID", context.Background(), id).Return(&models.Supplier{
		ID: id, Name: "new supplier", Grade: models.GradeA,
	}, nil)

	perf, err := service.Performance(context.Background(), id)
	assert.NoError(t, err)
	assert.Zero(t, perf.DelayRate)
	assert.Equal(t, models.GradeA, perf.ComputedGrade)
}
