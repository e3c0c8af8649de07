package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provender/internal/apperrors"
	"provender/internal/caching"
	"provender/internal/models"
	"provender/internal/repositories"
)

func TestMaterialCreate_RejectsOrderThresholdBelowSafety(t *testing.T) {
	repo := &repositories.MockMaterialRepository{}
	cache := &caching.MockCacheService{}
	service := NewMaterialService(repo, cache)

	material := &models.Material{
		Code:            "FLR-T55",
		Name:            "Flour T55",
		Unit:            "kg",
		SafetyThreshold: floatPtr(50),
		OrderThreshold:  floatPtr(40),
	}
	err := service.Create(context.Background(), material)

	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "order_threshold", validation.Field)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMaterialCreate_DefaultsAndPersists(t *testing.T) {
	repo := &repositories.MockMaterialRepository{}
	cache := &caching.MockCacheService{}
	service := NewMaterialService(repo, cache)

	material := &models.Material{
		Code:            "FLR-T55",
		Name:            "Flour T55",
		Unit:            "kg",
		SafetyThreshold: floatPtr(50),
		OrderThreshold:  floatPtr(80),
	}
	repo.On("Create", context.Background(), material).Return(nil)
	cache.On("InvalidateRisk", context.Background()).Return(nil)

	err := service.Create(context.Background(), material)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, material.ID)
	assert.Equal(t, models.CriticalityLow, material.Criticality)
	assert.Equal(t, models.RiskHealthy, material.RiskState)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestMaterialUpdate_RejectsOrderThresholdBelowSafety(t *testing.T) {
	repo := &repositories.MockMaterialRepository{}
	cache := &caching.MockCacheService{}
	service := NewMaterialService(repo, cache)

	material := &models.Material{
		ID:              uuid.New(),
		Code:            "FLR-T55",
		Name:            "Flour T55",
		Unit:            "kg",
		Criticality:     models.CriticalityHigh,
		SafetyThreshold: floatPtr(50),
		OrderThreshold:  floatPtr(50),
	}
	err := service.Update(context.Background(), material)

	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMaterialUpdate_UnknownMaterial(t *testing.T) {
	repo := &repositories.MockMaterialRepository{}
	cache := &caching.MockCacheService{}
	service := NewMaterialService(repo, cache)

	material := &models.Material{
		ID:          uuid.New(),
		Code:        "FLR-T55",
		Name:        "Flour T55",
		Unit:        "kg",
		Criticality: models.CriticalityHigh,
	}
	repo.On("GetByID", context.Background(), material.ID).Return(nil, assert.AnError)

	err := service.Update(context.Background(), material)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMaterialUpdate_Persists(t *testing.T) {
	repo := &repositories.MockMaterialRepository{}
	cache := &caching.MockCacheService{}
	service := NewMaterialService(repo, cache)

	material := &models.Material{
		ID:              uuid.New(),
		Code:            "FLR-T55",
		Name:            "Flour T55",
		Unit:            "kg",
		Criticality:     models.CriticalityHigh,
		SafetyThreshold: floatPtr(50),
		OrderThreshold:  floatPtr(80),
	}
	repo.On("GetByID", context.Background(), material.ID).Return(material, nil)
	repo.On("Update", context.Background(), material).Return(nil)
	cache.On("InvalidateRisk", context.Background()).Return(nil)

	err := service.Update(context.Background(), material)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
