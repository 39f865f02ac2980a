// Package cache keeps the last schedule subscribers were notified about,
// so change detection survives restarts.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"shutdowns-bot/internal/schedule"
)

const notifiedKey = "sched:notified"

type Cache struct {
	Client *redis.Client
}

func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{Client: client}, nil
}

func (c *Cache) Close() error {
	return c.Client.Close()
}

// LoadSnapshot returns the last notified snapshot, or nil if none was stored.
func (c *Cache) LoadSnapshot(ctx context.Context) (*schedule.Snapshot, error) {
	val, err := c.Client.Get(ctx, notifiedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap schedule.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot replaces the last notified snapshot.
func (c *Cache) SaveSnapshot(ctx context.Context, snap schedule.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.Client.Set(ctx, notifiedKey, data, 0).Err()
}

// Memory is the in-process fallback used when no redis is configured.
type Memory struct {
	mu   sync.Mutex
	snap *schedule.Snapshot
}

func (m *Memory) LoadSnapshot(context.Context) (*schedule.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	snap := schedule.Snapshot{Table: m.snap.Table.Clone(), FetchedAt: m.snap.FetchedAt}
	return &snap, nil
}

func (m *Memory) SaveSnapshot(_ context.Context, snap schedule.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &schedule.Snapshot{Table: snap.Table.Clone(), FetchedAt: snap.FetchedAt}
	return nil
}
