package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"govdash/internal/ratelimit/models"
	"govdash/pkg/platform/sentinel"
)

// RedisBucketStore is a fixed-window counter shared by every replica. The
// first request in a window starts its TTL.
type RedisBucketStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisBucketStore(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client, prefix: "govdash:"}
}

// WithPrefix namespaces keys, mainly so tests can share one server.
func (s *RedisBucketStore) WithPrefix(prefix string) *RedisBucketStore {
	s.prefix = prefix
	return s
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	k := s.prefix + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, window)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w: %v", key, sentinel.ErrUnavailable, err)
	}

	count := int(incr.Val())
	remainingTTL := ttl.Val()
	if remainingTTL <= 0 {
		remainingTTL = window
	}
	resetAt := time.Now().Add(remainingTTL)
	if count <= limit {
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - count,
			ResetAt:   resetAt,
		}, nil
	}
	return &models.RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		ResetAt:    resetAt,
		RetryAfter: retryAfter(remainingTTL),
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("rate limit reset %s: %w: %v", key, sentinel.ErrUnavailable, err)
	}
	return nil
}
