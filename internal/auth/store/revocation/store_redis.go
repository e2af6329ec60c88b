package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"govdash/internal/auth/metrics"
	"govdash/pkg/platform/sentinel"
)

const revokedTokenKeyPrefix = "govdash:trl:jti:"

// RedisTRL shares revocation state between gateway instances.
type RedisTRL struct {
	client  redis.UniversalClient
	prefix  string
	metrics *metrics.Metrics
}

// RedisTRLOption configures a RedisTRL instance.
type RedisTRLOption func(*RedisTRL)

func WithMetrics(m *metrics.Metrics) RedisTRLOption {
	return func(t *RedisTRL) {
		t.metrics = m
	}
}

// WithKeyPrefix namespaces keys, for tests sharing one Redis.
func WithKeyPrefix(prefix string) RedisTRLOption {
	return func(t *RedisTRL) {
		t.prefix = prefix
	}
}

func NewRedisTRL(client redis.UniversalClient, opts ...RedisTRLOption) *RedisTRL {
	trl := &RedisTRL{
		client: client,
		prefix: revokedTokenKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// RevokeToken stores a marker that expires with the token.
func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if jti == "" {
		return nil
	}
	if err := t.client.Set(ctx, t.prefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports false once the marker has expired.
func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	start := time.Now()
	defer t.metrics.ObserveRevocationCheck(start)

	if jti == "" {
		return false, nil
	}
	err := t.client.Get(ctx, t.prefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w: %v", sentinel.ErrUnavailable, err)
	}
	return true, nil
}
