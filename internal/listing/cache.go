package listing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/model"
)

// Cache stores parsed listings by property id.
type Cache interface {
	Get(ctx context.Context, id string) (*model.PropertyRecord, error)
	Set(ctx context.Context, rec *model.PropertyRecord, ttl time.Duration) error
}

// RedisCache keeps listings as JSON strings under "listing:<id>".
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func cacheKey(id string) string { return "listing:" + id }

// Get returns the cached listing, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, id string) (*model.PropertyRecord, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "listing cache: get %s", id)
	}

	var rec model.PropertyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, eris.Wrapf(err, "listing cache: decode %s", id)
	}
	return &rec, nil
}

// Set stores rec for ttl.
func (c *RedisCache) Set(ctx context.Context, rec *model.PropertyRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrapf(err, "listing cache: encode %s", rec.ID)
	}
	if err := c.rdb.Set(ctx, cacheKey(rec.ID), raw, ttl).Err(); err != nil {
		return eris.Wrapf(err, "listing cache: set %s", rec.ID)
	}
	return nil
}
