package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/lberthe/mocktail-machine/internal/port"
)

const levelKeyPrefix = "level:"

// deductLevelScript decreases a cached level, clamping at zero, and returns
// the remaining value. -1 means the key is absent.
var deductLevelScript = redis.NewScript(`
local key = KEYS[1]
local volume = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return -1
end

current = tonumber(current)
local remaining = current - volume
if remaining < 0 then
	remaining = 0
end
redis.call('SET', key, remaining)
return remaining
`)

// RedisAdapter keeps ingredient levels in Redis for fast reads; the durable
// store stays the source of truth.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetLevel(ctx context.Context, ingredientID string, level int) error {
	return r.client.Set(ctx, levelKeyPrefix+ingredientID, level, 0).Err()
}

func (r *RedisAdapter) DeductLevel(ctx context.Context, ingredientID string, volume int) (int, error) {
	remaining, err := deductLevelScript.Run(ctx, r.client,
		[]string{levelKeyPrefix + ingredientID}, volume).Int()
	if err != nil {
		return 0, err
	}
	if remaining < 0 {
		return 0, port.ErrLevelNotCached
	}
	return remaining, nil
}

func (r *RedisAdapter) GetLevel(ctx context.Context, ingredientID string) (int, bool, error) {
	level, err := r.client.Get(ctx, levelKeyPrefix+ingredientID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return level, true, nil
}
