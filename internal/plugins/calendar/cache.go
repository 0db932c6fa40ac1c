package calendar

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/keyxmakerx/clubcal/internal/metrics"
)

// monthKeyPrefix namespaces month snapshots in both cache tiers.
const monthKeyPrefix = "clubcal:month:"

// MonthCache keeps recently loaded snapshots. With Redis configured every
// instance reads and writes the shared tier only, so an invalidation on one
// instance is seen by all of them. Without Redis an in-process LRU serves a
// single instance. A nil *MonthCache is valid and caches nothing.
type MonthCache struct {
	local   *expirable.LRU[string, *Snapshot]
	redis   *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewMonthCache creates a cache whose entries live for ttl. rdb selects the
// shared tier; when nil, up to size snapshots are held in process.
func NewMonthCache(size int, ttl time.Duration, rdb *redis.Client, m *metrics.Metrics) *MonthCache {
	return &MonthCache{
		local:   expirable.NewLRU[string, *Snapshot](size, nil, ttl),
		redis:   rdb,
		ttl:     ttl,
		metrics: m,
	}
}

// monthKey builds the cache key. Snapshots are per viewer because the
// platform filters data by credential; the credential is hashed so raw
// tokens never appear in keys.
func monthKey(scope Scope, month Month, credential string) string {
	sum := blake2b.Sum256([]byte(credential))
	return monthPrefix(scope, month) + hex.EncodeToString(sum[:16])
}

func monthPrefix(scope Scope, month Month) string {
	return monthKeyPrefix + string(scope) + ":" + month.String() + ":"
}

// Get returns a cached snapshot from whichever tier is in use.
func (c *MonthCache) Get(ctx context.Context, scope Scope, month Month, credential string) (*Snapshot, bool) {
	if c == nil {
		return nil, false
	}
	key := monthKey(scope, month, credential)

	if c.redis == nil {
		snap, ok := c.local.Get(key)
		c.metrics.ObserveCache("local", ok)
		return snap, ok
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("month cache read failed", slog.String("key_prefix", monthPrefix(scope, month)), slog.Any("error", err))
		}
		c.metrics.ObserveCache("redis", false)
		return nil, false
	}

	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		slog.Warn("discarding undecodable cached month", slog.Any("error", err))
		c.metrics.ObserveCache("redis", false)
		return nil, false
	}
	c.metrics.ObserveCache("redis", true)
	return snap, true
}

// Put stores a snapshot. Degraded snapshots are never cached so a
// transient upstream failure is not remembered.
func (c *MonthCache) Put(ctx context.Context, credential string, snap *Snapshot) {
	if c == nil || snap.IsDegraded() {
		return
	}
	key := monthKey(snap.Scope, snap.Month, credential)

	if c.redis == nil {
		c.local.Add(key, snap)
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Warn("encoding month for cache", slog.Any("error", err))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("month cache write failed", slog.Any("error", err))
	}
}

// Invalidate drops every viewer's snapshot of scope and month.
func (c *MonthCache) Invalidate(ctx context.Context, scope Scope, month Month) {
	if c == nil {
		return
	}
	prefix := monthPrefix(scope, month)

	if c.redis == nil {
		for _, key := range c.local.Keys() {
			if strings.HasPrefix(key, prefix) {
				c.local.Remove(key)
			}
		}
		return
	}
	iter := c.redis.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("month cache scan failed", slog.String("key_prefix", prefix), slog.Any("error", err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("month cache invalidation failed", slog.String("key_prefix", prefix), slog.Any("error", err))
	}
}
