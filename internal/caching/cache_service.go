package caching

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"provender/internal/models"
)

const (
	riskIndexKey     = "provender:riskindex"
	riskSnapshotsKey = "provender:risksnapshots"
)

type CacheService interface {
	// Risk index caching
	GetRiskIndex(ctx context.Context) (*models.RiskIndex, error)
	SetRiskIndex(ctx context.Context, index *models.RiskIndex, ttl time.Duration) error

	// Risk snapshot caching
	GetRiskSnapshots(ctx context.Context) ([]*models.MaterialRiskSnapshot, error)
	SetRiskSnapshots(ctx context.Context, snapshots []*models.MaterialRiskSnapshot, ttl time.Duration) error

	// InvalidateRisk drops both cached views; called after any write that
	// changes stock or thresholds.
	InvalidateRisk(ctx context.Context) error

	// Ping reports cache connectivity, for the health endpoint.
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetRiskIndex(ctx context.Context) (*models.RiskIndex, error) {
	data, err := r.client.Get(ctx, riskIndexKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var index models.RiskIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

func (r *redisCacheService) SetRiskIndex(ctx context.Context, index *models.RiskIndex, ttl time.Duration) error {
	data, err := json.Marshal(index)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, riskIndexKey, data, ttl).Err()
}

func (r *redisCacheService) GetRiskSnapshots(ctx context.Context) ([]*models.MaterialRiskSnapshot, error) {
	data, err := r.client.Get(ctx, riskSnapshotsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var snapshots []*models.MaterialRiskSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *redisCacheService) SetRiskSnapshots(ctx context.Context, snapshots []*models.MaterialRiskSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshots)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, riskSnapshotsKey, data, ttl).Err()
}

func (r *redisCacheService) InvalidateRisk(ctx context.Context) error {
	return r.client.Del(ctx, riskIndexKey, riskSnapshotsKey).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
