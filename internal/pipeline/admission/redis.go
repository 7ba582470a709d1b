// internal/pipeline/admission/redis.go
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript opens the window on the first hit and reports the count
// plus the remaining window in one atomic round trip. Redis serializes
// script execution per key, which gives the single win/lose outcome the
// controller needs under concurrent bursts.
var incrScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RedisStore is a Redis-backed fixed-window store, suitable when several
// pipeline instances share one rate limit.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a RedisStore using the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:sender:",
	}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.keyPrefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit incr: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, 0, fmt.Errorf("rate limit incr: unexpected reply %v", res)
	}

	count, _ := vals[0].(int64)
	ttlMs, _ := vals[1].(int64)
	if ttlMs < 0 {
		// Key exists without expiry (script raced a flush); treat the
		// full window as remaining.
		ttlMs = window.Milliseconds()
	}

	return count, time.Duration(ttlMs) * time.Millisecond, nil
}
