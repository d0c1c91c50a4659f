package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/andresuchdata/skusim/internal/config"
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const runKeyPrefix = "skusim:run:"

// RunCache keeps recently computed simulation runs close to the API.
type RunCache interface {
	GetRun(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, bool, error)
	SetRun(ctx context.Context, run *domain.SimulationRun) error
}

// NewRunCache returns a redis cache when caching is enabled, otherwise an
// in-process LRU (or a no-op cache when LocalSize is zero).
func NewRunCache(cfg config.CacheConfig) (RunCache, error) {
	if !cfg.Enabled {
		if cfg.LocalSize <= 0 {
			return &noopRunCache{}, nil
		}
		ttl := time.Duration(cfg.RunTTLSeconds) * time.Second
		return NewLocalRunCache(cfg.LocalSize, ttl), nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRunCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopRunCache() RunCache {
	return &noopRunCache{}
}

type redisRunCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisRunCache) GetRun(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, bool, error) {
	payload, err := c.client.Get(ctx, runKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get failed")
	}

	var run domain.SimulationRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, false, errors.Wrap(err, "decode run cache")
	}

	return &run, true, nil
}

func (c *redisRunCache) SetRun(ctx context.Context, run *domain.SimulationRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, "encode run cache")
	}

	if err := c.client.Set(ctx, runKey(run.ID), payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set failed")
	}
	return nil
}

func runKey(id uuid.UUID) string {
	return runKeyPrefix + id.String()
}

// localRunCache is a size-bounded in-process cache with TTL expiry.
type localRunCache struct {
	lru *expirable.LRU[uuid.UUID, *domain.SimulationRun]
}

// NewLocalRunCache creates an in-process LRU cache. A zero ttl disables expiry.
func NewLocalRunCache(size int, ttl time.Duration) RunCache {
	return &localRunCache{
		lru: expirable.NewLRU[uuid.UUID, *domain.SimulationRun](size, nil, ttl),
	}
}

func (c *localRunCache) GetRun(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, bool, error) {
	run, ok := c.lru.Get(id)
	return run, ok, nil
}

func (c *localRunCache) SetRun(ctx context.Context, run *domain.SimulationRun) error {
	c.lru.Add(run.ID, run)
	return nil
}

type noopRunCache struct{}

func (c *noopRunCache) GetRun(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, bool, error) {
	return nil, false, nil
}

func (c *noopRunCache) SetRun(ctx context.Context, run *domain.SimulationRun) error {
	return nil
}
