// Package cache wraps Redis as an optional capability. Every operation
// reports unavailability instead of failing the caller, so "cache absent" is
// a normal operating mode for the rest of the system.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Client struct {
	rdb *redis.Client

	mu        sync.RWMutex
	available bool
}

func New(cfg conf.Redis) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	c := NewWithClient(rdb)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if !c.Ping(ctx) {
		log.Warnf("redis not reachable at %s, continuing without cache", cfg.Addr)
	}
	return c
}

// NewWithClient wraps an existing client, assumed reachable until an
// operation proves otherwise.
func NewWithClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, available: true}
}

func (c *Client) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

func (c *Client) setAvailable(ok bool) {
	c.mu.Lock()
	c.available = ok
	c.mu.Unlock()
}

// Ping probes the connection and updates availability, so a recovered Redis
// comes back into service without a restart.
func (c *Client) Ping(ctx context.Context) bool {
	err := c.rdb.Ping(ctx).Err()
	c.setAvailable(err == nil)
	return err == nil
}

// Get returns (value, found, err). A nil error with found=false is a miss;
// errs.CacheUnavailable means the cache is down and the caller should fall
// through to the source of truth.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	if !c.Available() {
		return "", false, errs.CacheUnavailable
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		c.setAvailable(false)
		return "", false, errors.Wrapf(err, "redis GET %s", key)
	}
	return val, true, nil
}

// SetEx upserts a value with a TTL. Expiry is the only deletion mechanism for
// task records, so ttl must always be positive.
func (c *Client) SetEx(ctx context.Context, key string, value string, ttl time.Duration) error {
	if !c.Available() {
		return errs.CacheUnavailable
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.setAvailable(false)
		return errors.Wrapf(err, "redis SETEX %s", key)
	}
	return nil
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if !c.Available() {
		return errs.CacheUnavailable
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.setAvailable(false)
		return errors.Wrap(err, "redis DEL")
	}
	return nil
}

// DeletePattern scans for keys matching pattern and bulk-deletes them.
// Used for per-user list invalidation (formulas:{userId}:*).
func (c *Client) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if !c.Available() {
		return 0, errs.CacheUnavailable
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.setAvailable(false)
		return 0, errors.Wrapf(err, "redis SCAN %s", pattern)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.setAvailable(false)
		return 0, errors.Wrap(err, "redis DEL")
	}
	return len(keys), nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
