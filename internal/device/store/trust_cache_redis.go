package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"riskgate/internal/device/models"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "riskgate_device_trust_cache_lookups_total",
	Help: "Device trust cache lookups by result (hit, miss, error)",
}, []string{"result"})

const (
	trustKeyPrefix  = "device:trust:"
	defaultCacheTTL = 5 * time.Minute
)

// RedisTrustCache caches device trust status in Redis so login paths on
// other instances see the latest registration without a store round trip.
type RedisTrustCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisTrustCacheOption func(*RedisTrustCache)

func WithTTL(ttl time.Duration) RedisTrustCacheOption {
	return func(c *RedisTrustCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewRedisTrustCache(client *redis.Client, opts ...RedisTrustCacheOption) *RedisTrustCache {
	c := &RedisTrustCache{client: client, ttl: defaultCacheTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func trustKey(userID, deviceID string) string {
	return trustKeyPrefix + userID + ":" + deviceID
}

func (c *RedisTrustCache) Get(ctx context.Context, userID, deviceID string) (*models.DeviceTrustStatus, error) {
	raw, err := c.client.Get(ctx, trustKey(userID, deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("get trust status: %w", err)
	}
	var status models.DeviceTrustStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next Set
		cacheLookups.WithLabelValues("error").Inc()
		return nil, nil
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return &status, nil
}

// Set stores the status for the cache TTL, or for maxAge when that is
// shorter.
func (c *RedisTrustCache) Set(ctx context.Context, userID, deviceID string, status models.DeviceTrustStatus, maxAge time.Duration) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode trust status: %w", err)
	}
	ttl := c.ttl
	if maxAge > 0 && maxAge < ttl {
		ttl = maxAge
	}
	return c.client.Set(ctx, trustKey(userID, deviceID), raw, ttl).Err()
}

func (c *RedisTrustCache) Invalidate(ctx context.Context, userID, deviceID string) error {
	return c.client.Del(ctx, trustKey(userID, deviceID)).Err()
}
