package store

import (
	"context"
	"sync"
	"time"
)

// MemoryCounters keeps the attack windows in process. Suitable for a single
// instance; use RedisCounters when several instances share traffic.
type MemoryCounters struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	ipUsers  map[string]map[string]time.Time
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{
		failures: make(map[string][]time.Time),
		ipUsers:  make(map[string]map[string]time.Time),
	}
}

func (c *MemoryCounters) RecordFailure(_ context.Context, userID string, at time.Time, window time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := at.Add(-window)
	kept := c.failures[userID][:0]
	for _, t := range c.failures[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, at)
	c.failures[userID] = kept

	n := 0
	for _, t := range kept {
		if !t.After(at) {
			n++
		}
	}
	return n, nil
}

func (c *MemoryCounters) RecordUserForIP(_ context.Context, ip, userID string, at time.Time, window time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	users, ok := c.ipUsers[ip]
	if !ok {
		users = make(map[string]time.Time)
		c.ipUsers[ip] = users
	}
	if last, seen := users[userID]; !seen || at.After(last) {
		users[userID] = at
	}

	cutoff := at.Add(-window)
	n := 0
	for u, last := range users {
		if !last.After(cutoff) {
			delete(users, u)
			continue
		}
		if !last.After(at) {
			n++
		}
	}
	return n, nil
}
