package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"polizaexpress/internal/evidence/registry/models"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
)

const vitalKeyPrefix = "registry:vital:"

// RedisCache shares registry records across instances. Keys expire with
// the retention window.
type RedisCache struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisCache constructs a Redis-backed registry cache.
func NewRedisCache(client *redis.Client, retention time.Duration) *RedisCache {
	return &RedisCache{client: client, retention: retention}
}

func (c *RedisCache) SaveVital(ctx context.Context, record *models.VitalRecord) error {
	if record == nil {
		return fmt.Errorf("vital record is required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal vital record: %w", err)
	}
	if err := c.client.Set(ctx, vitalKeyPrefix+record.IdentityNumber, payload, c.retention).Err(); err != nil {
		return fmt.Errorf("save vital cache: %w", err)
	}
	return nil
}

func (c *RedisCache) FindVital(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error) {
	payload, err := c.client.Get(ctx, vitalKeyPrefix+identityNumber.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vital cache: %w", err)
	}
	var record models.VitalRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode vital cache: %w", err)
	}
	return &record, nil
}
