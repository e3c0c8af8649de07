package caching

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"provender/internal/models"
)

// MockCacheService is the testify double used by the service tests.
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetRiskIndex(ctx context.Context) (*models.RiskIndex, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RiskIndex), args.Error(1)
}

func (m *MockCacheService) SetRiskIndex(ctx context.Context, index *models.RiskIndex, ttl time.Duration) error {
	args := m.Called(ctx, index, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetRiskSnapshots(ctx context.Context) ([]*models.MaterialRiskSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaterialRiskSnapshot), args.Error(1)
}

func (m *MockCacheService) SetRiskSnapshots(ctx context.Context, snapshots []*models.MaterialRiskSnapshot, ttl time.Duration) error {
	args := m.Called(ctx, snapshots, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateRisk(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
