package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	failureKeyPrefix = "threat:failures:"
	ipUsersKeyPrefix = "threat:ip-users:"
)

// RedisCounters keeps the attack windows in sorted sets scored by event
// time in milliseconds, so every instance sees the same counts.
type RedisCounters struct {
	client *redis.Client
}

func NewRedisCounters(client *redis.Client) *RedisCounters {
	return &RedisCounters{client: client}
}

// RecordFailure adds one member per failure; members are unique so repeated
// failures at the same instant all count.
func (c *RedisCounters) RecordFailure(ctx context.Context, userID string, at time.Time, window time.Duration) (int, error) {
	key := failureKeyPrefix + userID
	return c.record(ctx, key, at.UnixMilli(), uuid.NewString(), at, window)
}

// RecordUserForIP uses the user id as the member, so the set holds one
// entry per distinct user scored by their latest failure.
func (c *RedisCounters) RecordUserForIP(ctx context.Context, ip, userID string, at time.Time, window time.Duration) (int, error) {
	key := ipUsersKeyPrefix + ip
	return c.record(ctx, key, at.UnixMilli(), userID, at, window)
}

func (c *RedisCounters) record(ctx context.Context, key string, score int64, member string, at time.Time, window time.Duration) (int, error) {
	lo := strconv.FormatInt(at.Add(-window).UnixMilli(), 10)
	hi := strconv.FormatInt(at.UnixMilli(), 10)

	var count *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAddGT(ctx, key, redis.Z{Score: float64(score), Member: member})
		p.ZRemRangeByScore(ctx, key, "-inf", lo)
		count = p.ZCount(ctx, key, "("+lo, hi)
		p.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", key, err)
	}
	return int(count.Val()), nil
}
