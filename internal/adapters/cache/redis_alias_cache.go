package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"order-fulfillment-service/internal/ports"
)

const aliasKeyPrefix = "alias:"

// RedisAliasCache caches scanned-code -> article-code resolutions in Redis
// with a TTL, so repeated scans of the same barcode skip the ERP alias
// search. Entries expire rather than being invalidated: alias edits in the
// ERP become visible after at most one TTL.
type RedisAliasCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisAliasCache(client *redis.Client, ttl time.Duration) *RedisAliasCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisAliasCache{Client: client, TTL: ttl}
}

var _ ports.AliasCache = (*RedisAliasCache)(nil)

func (c *RedisAliasCache) Get(ctx context.Context, scanned string) (string, bool, error) {
	if c.Client == nil {
		return "", false, errors.New("alias cache: client is nil")
	}

	scanned = strings.TrimSpace(scanned)
	if scanned == "" {
		return "", false, errors.New("get alias: scanned code must not be empty")
	}

	code, err := c.Client.Get(ctx, aliasKeyPrefix+scanned).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get alias %q: %w", scanned, err)
	}

	return code, true, nil
}

func (c *RedisAliasCache) Put(ctx context.Context, scanned, code string) error {
	if c.Client == nil {
		return errors.New("alias cache: client is nil")
	}

	scanned = strings.TrimSpace(scanned)
	if scanned == "" || code == "" {
		return errors.New("put alias: scanned code and article code must not be empty")
	}

	if err := c.Client.Set(ctx, aliasKeyPrefix+scanned, code, c.TTL).Err(); err != nil {
		return fmt.Errorf("put alias %q: %w", scanned, err)
	}
	return nil
}
