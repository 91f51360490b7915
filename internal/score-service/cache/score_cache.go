package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

// key segue o mesmo esquema gravado pelo score-processor-worker
func key(matchID string) string { return "score:current:" + matchID }

func (c *Cache) GetScore(ctx context.Context, matchID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key(matchID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetScore(ctx context.Context, matchID string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, key(matchID), b, ttl).Err()
}
