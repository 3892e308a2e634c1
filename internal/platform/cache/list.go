package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

// ListCache stores rendered list pages per table. Every table has a version
// counter; writes bump it, which orphans all cached pages of that table.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache builds a ListCache. A nil client disables caching.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

func versionKey(table string) string {
	return "list:" + table + ":version"
}

// Version returns the current version of table, initialising it when missing.
func (c *ListCache) Version(ctx context.Context, table string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(table)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey(table), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key composes the cache key of one query of table.
func (c *ListCache) Key(ctx context.Context, table, query string) (string, error) {
	ver, err := c.Version(ctx, table)
	if err != nil {
		return "", err
	}
	sum := strconv.FormatUint(xxhash.Sum64String(query), 16)
	return fmt.Sprintf("list:%s:%s:%d", table, sum, ver), nil
}

// FetchJSON loads the cached page of query into dest, or runs loader and
// caches its result. Redis failures fall through to the loader.
func (c *ListCache) FetchJSON(ctx context.Context, table, query string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("platform/cache: loader required")
	}
	if c == nil || c.client == nil {
		return load(ctx, dest, loader)
	}
	key, err := c.Key(ctx, table, query)
	if err != nil {
		return load(ctx, dest, loader)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return load(ctx, dest, loader)
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached page of table.
func (c *ListCache) Bump(ctx context.Context, table string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(table)).Err()
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
