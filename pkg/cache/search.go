package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	searchPrefix     = "search"
	searchVersionKey = "search:version"
)

// SearchCache stores rendered search pages. Entries are namespaced by a
// version counter, so Invalidate drops every page with a single INCR and
// stale entries simply age out.
//
// Get returns the versioned key it looked up. Callers pass that key to Set
// so a page computed before an Invalidate is filed under the old version.
type SearchCache interface {
	Get(ctx context.Context, params map[string]string, dst any) (string, bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// store is the subset of *redis.Client the cache uses.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type RedisSearchCache struct {
	rdb store
	ttl time.Duration
}

func NewRedisSearchCache(rdb *redis.Client, ttl time.Duration) *RedisSearchCache {
	return &RedisSearchCache{rdb: rdb, ttl: ttl}
}

func (c *RedisSearchCache) key(ctx context.Context, params map[string]string) (string, error) {
	version, err := c.rdb.Get(ctx, searchVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return QueryKey(fmt.Sprintf("%s:v%d", searchPrefix, version), params), nil
}

func (c *RedisSearchCache) Get(ctx context.Context, params map[string]string, dst any) (string, bool, error) {
	key, err := c.key(ctx, params)
	if err != nil {
		return "", false, err
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return key, false, nil
	}
	if err != nil {
		return key, false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return key, false, err
	}
	return key, true, nil
}

// Set stores value under a key returned by Get. An empty key is ignored.
func (c *RedisSearchCache) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisSearchCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, searchVersionKey).Err()
}

// QueryKey hashes params in key order so equal queries share an entry
// regardless of parameter order.
func QueryKey(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(params[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	return prefix + ":" + hex.EncodeToString(hash[:])
}

// NopSearchCache is used when Redis is not configured.
type NopSearchCache struct{}

func (NopSearchCache) Get(context.Context, map[string]string, any) (string, bool, error) {
	return "", false, nil
}
func (NopSearchCache) Set(context.Context, string, any) error { return nil }
func (NopSearchCache) Invalidate(context.Context) error       { return nil }
