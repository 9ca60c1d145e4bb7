package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares guard state across processes. Hits are kept in a
// sorted set scored by timestamp so the trailing window can be pruned
// and counted in one atomic script; violations and blocks are plain
// keys with TTLs.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. prefix namespaces all keys
// (e.g. "rl").
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// hitScript prunes entries older than the window, appends the current
// hit and returns the resulting cardinality. Running it server-side
// keeps the prune-add-count sequence atomic under concurrent requests.
var hitScript = redis.NewScript(`
    local key = KEYS[1]
    local now_us = tonumber(ARGV[1])
    local window_us = tonumber(ARGV[2])
    local ttl_seconds = tonumber(ARGV[3])
    local member = ARGV[4]

    redis.call('ZREMRANGEBYSCORE', key, 0, now_us - window_us)
    redis.call('ZADD', key, now_us, member)
    redis.call('EXPIRE', key, ttl_seconds)
    return redis.call('ZCARD', key)
`)

func (s *RedisStore) Hit(ctx context.Context, id string, window time.Duration) (int64, error) {
	key := fmt.Sprintf("%s:hits:%s", s.prefix, id)
	now := time.Now().UnixMicro()
	ttl := int64(window/time.Second) + 1
	// The member carries a random suffix so two hits landing in the
	// same microsecond stay distinct zset entries; only the score
	// decides what the window prune removes.
	member := strconv.FormatInt(now, 10) + "-" + randSuffix()
	n, err := hitScript.Run(ctx, s.rdb, []string{key},
		now, window.Microseconds(), ttl, member).Int64()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func randSuffix() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b[:])
}

func (s *RedisStore) Violation(ctx context.Context, id string, ttl time.Duration) (int64, error) {
	key := fmt.Sprintf("%s:viol:%s", s.prefix, id)
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisStore) Block(ctx context.Context, id string, d time.Duration) error {
	key := fmt.Sprintf("%s:block:%s", s.prefix, id)
	return s.rdb.Set(ctx, key, "1", d).Err()
}

func (s *RedisStore) BlockedFor(ctx context.Context, id string) (time.Duration, error) {
	key := fmt.Sprintf("%s:block:%s", s.prefix, id)
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// TTL returns a negative duration when the key is missing or has no
	// expiry.
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}
