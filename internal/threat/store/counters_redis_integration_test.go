//go:build integration

package store

import (
	"context"
	"testing"

	"riskgate/pkg/testutil/containers"
)

func TestRedisCounters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	redis := containers.GetManager().GetRedis(t)
	if err := redis.FlushAll(context.Background()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	exerciseCounters(t, NewRedisCounters(redis.Client))
}
