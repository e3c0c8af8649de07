package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"provender/internal/caching"
	"provender/internal/models"
)

func TestComputeRiskIndex(t *testing.T) {
	tests := []struct {
		name       string
		states     []models.RiskState
		wantValue  int
		wantStatus models.RiskIndexStatus
	}{
		{name: "empty plant", states: nil, wantValue: 0, wantStatus: models.RiskIndexHealthy},
		{name: "all healthy", states: []models.RiskState{models.RiskHealthy, models.RiskHealthy},
			wantValue: 0, wantStatus: models.RiskIndexHealthy},
		{name: "one blocking dominates", states: []models.RiskState{models.RiskBlocking},
			wantValue: 30, wantStatus: models.RiskIndexHealthy},
		{name: "two blocking read as critical",
			states:    []models.RiskState{models.RiskBlocking, models.RiskBlocking},
			wantValue: 60, wantStatus: models.RiskIndexCritical},
		{name: "mixed watch band",
			states:    []models.RiskState{models.RiskBlocking, models.RiskBelowSafety, models.RiskToOrder},
			wantValue: 40, wantStatus: models.RiskIndexWatch},
		{name: "clamped at one hundred",
			states: []models.RiskState{
				models.RiskBlocking, models.RiskBlocking, models.RiskBlocking,
				models.RiskOutOfStock, models.RiskOutOfStock,
			},
			wantValue: 100, wantStatus: models.RiskIndexCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := ComputeRiskIndex(tt.states)
			assert.Equal(t, tt.wantValue, index.Value)
			assert.Equal(t, tt.wantStatus, index.Status)
		})
	}
}

func TestComputeRiskIndex_Breakdown(t *testing.T) {
	index := ComputeRiskIndex([]models.RiskState{
		models.RiskBlocking, models.RiskOutOfStock, models.RiskOutOfStock,
		models.RiskBelowSafety, models.RiskToOrder, models.RiskHealthy,
	})
	assert.Equal(t, 1, index.Breakdown.Blocking)
	assert.Equal(t, 2, index.Breakdown.OutOfStock)
	assert.Equal(t, 1, index.Breakdown.BelowSafety)
	assert.Equal(t, 1, index.Breakdown.ToOrder)
	assert.Equal(t, 1, index.Breakdown.Healthy)
}

func TestPlantIndex_ServesFromCache(t *testing.T) {
	cache := &caching.MockCacheService{}
	cached := &models.RiskIndex{Value: 40, Status: models.RiskIndexWatch}
	cache.On("GetRiskIndex", mock.Anything).Return(cached, nil)

	service := NewRiskIndexService(nil, cache, 0)
	index, err := service.PlantIndex(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, cached, index)
	cache.AssertExpectations(t)
}
