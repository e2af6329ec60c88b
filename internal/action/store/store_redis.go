package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"govdash/internal/action/models"
	"govdash/pkg/platform/sentinel"
)

const defaultPrefix = "govdash:actions"

// RedisStore keeps each action as a JSON string and indexes ids in sorted
// sets scored by timestamp: one global, one per region.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: defaultPrefix}
}

// WithPrefix namespaces keys, for tests sharing one Redis.
func (s *RedisStore) WithPrefix(prefix string) *RedisStore {
	return &RedisStore{client: s.client, prefix: prefix}
}

func (s *RedisStore) actionKey(id string) string {
	return s.prefix + ":item:" + id
}

func (s *RedisStore) allKey() string {
	return s.prefix + ":all"
}

func (s *RedisStore) regionKey(regionID string) string {
	return s.prefix + ":region:" + regionID
}

func (s *RedisStore) Save(ctx context.Context, a *models.GovernanceAction) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	score := float64(a.Timestamp.UnixNano())

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.actionKey(a.ID), payload, 0)
		pipe.ZAdd(ctx, s.allKey(), redis.Z{Score: score, Member: a.ID})
		pipe.ZAdd(ctx, s.regionKey(a.RegionID), redis.Z{Score: score, Member: a.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save action %s: %w: %v", a.ID, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.GovernanceAction, error) {
	payload, err := s.client.Get(ctx, s.actionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get action %s: %w: %v", id, sentinel.ErrUnavailable, err)
	}
	var a models.GovernanceAction
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode action %s: %w", id, err)
	}
	return &a, nil
}

func (s *RedisStore) LatestForRegion(ctx context.Context, regionID string) (*models.GovernanceAction, error) {
	ids, err := s.client.ZRevRange(ctx, s.regionKey(regionID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("latest action for %s: %w: %v", regionID, sentinel.ErrUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return s.Get(ctx, ids[0])
}

// List returns every action, newest first. Index entries whose payload has
// gone missing are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*models.GovernanceAction, error) {
	ids, err := s.client.ZRevRange(ctx, s.allKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list actions: %w: %v", sentinel.ErrUnavailable, err)
	}
	out := make([]*models.GovernanceAction, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.actionKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list actions: %w: %v", sentinel.ErrUnavailable, err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var a models.GovernanceAction
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode action: %w", err)
		}
		out = append(out, &a)
	}
	return out, nil
}
