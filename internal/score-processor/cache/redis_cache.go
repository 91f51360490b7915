package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// RedisCache encapsula o cache do placar corrente no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key segue o esquema lido pelo score-service
func key(matchID string) string { return "score:current:" + matchID }

// SetCurrent armazena o placar corrente de uma partida no Redis com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, rec events.ScoreRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(rec.MatchID), b, r.TTL).Err()
}
