package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotPrefix = "repair:snapshot:"

// SnapshotCache — JSON-снапшоты устройств в redis с TTL.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(deviceID string) string { return snapshotPrefix + deviceID }

// Load читает снапшот в dst; false — промах.
func (c *SnapshotCache) Load(ctx context.Context, deviceID string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, snapshotKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// битая запись: считаем промахом и убираем
		_ = c.client.Del(ctx, snapshotKey(deviceID)).Err()
		return false, nil
	}
	return true, nil
}

func (c *SnapshotCache) Store(ctx context.Context, deviceID string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(deviceID), raw, c.ttl).Err()
}

func (c *SnapshotCache) Invalidate(ctx context.Context, deviceID string) error {
	return c.client.Del(ctx, snapshotKey(deviceID)).Err()
}

// Ping — для readiness.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Open создаёт клиента redis; addr пустой — кэш выключен (nil, nil).
func Open(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
