package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "altcha:used:"
	// shortest retention for a claimed id; zero or negative TTLs are raised to it
	minTTL = time.Second
)

// Redis is a replay guard shared by every server instance.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if id == "" {
		return false, nil
	}
	if ttl < minTTL {
		ttl = minTTL
	}
	ok, err := r.client.SetNX(ctx, usedKey(id), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim solution: %w", err)
	}
	return ok, nil
}

func usedKey(id string) string {
	return keyPrefix + id
}
