package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bouw-backoffice/internal/model"

	"github.com/redis/go-redis/v9"
)

const activeWorkCodesKey = "workcodes:active"

// WorkCodeCache holds the active global work-code catalog.
type WorkCodeCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) (codes []model.WorkCode, ok bool, err error)
	Set(ctx context.Context, codes []model.WorkCode) error
	Invalidate(ctx context.Context) error
}

type memoryWorkCodeCache struct {
	mu        sync.RWMutex
	codes     []model.WorkCode
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewMemoryWorkCodeCache keeps the catalog in process memory for ttl.
func NewMemoryWorkCodeCache(ttl time.Duration) WorkCodeCache {
	return &memoryWorkCodeCache{ttl: ttl, now: time.Now}
}

func (c *memoryWorkCodeCache) Get(ctx context.Context) ([]model.WorkCode, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.codes == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	out := make([]model.WorkCode, len(c.codes))
	copy(out, c.codes)
	return out, true, nil
}

func (c *memoryWorkCodeCache) Set(ctx context.Context, codes []model.WorkCode) error {
	stored := make([]model.WorkCode, len(codes))
	copy(stored, codes)

	c.mu.Lock()
	c.codes = stored
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

func (c *memoryWorkCodeCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.codes = nil
	c.mu.Unlock()
	return nil
}

type redisWorkCodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisWorkCodeCache shares the catalog between API instances.
func NewRedisWorkCodeCache(client *redis.Client, ttl time.Duration) WorkCodeCache {
	return &redisWorkCodeCache{client: client, ttl: ttl}
}

func (c *redisWorkCodeCache) Get(ctx context.Context) ([]model.WorkCode, bool, error) {
	data, err := c.client.Get(ctx, activeWorkCodesKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var codes []model.WorkCode
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, false, err
	}
	return codes, true, nil
}

func (c *redisWorkCodeCache) Set(ctx context.Context, codes []model.WorkCode) error {
	data, err := json.Marshal(codes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activeWorkCodesKey, data, c.ttl).Err()
}

func (c *redisWorkCodeCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, activeWorkCodesKey).Err()
}
