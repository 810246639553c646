package communities

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix = "jivelink:community:"
	redisIndexKey  = "jivelink:communities"
)

// redisStore implements Store on a redis hash-per-tenant plus an index set
// so Find can enumerate without KEYS scans.
type redisStore struct {
	cli *redis.Client
	log *zap.SugaredLogger
}

// NewRedisStore constructs a redis-backed community store.
func NewRedisStore(cli *redis.Client, log *zap.SugaredLogger) Store {
	return &redisStore{cli: cli, log: log}
}

func (r *redisStore) Save(ctx context.Context, c Community) (Community, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return Community{}, err
	}
	pipe := r.cli.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+c.TenantID, data, 0)
	pipe.SAdd(ctx, redisIndexKey, c.TenantID)
	if _, err := pipe.Exec(ctx); err != nil {
		return Community{}, err
	}
	return c, nil
}

func (r *redisStore) Find(ctx context.Context, f Filter) ([]Community, error) {
	// Point lookup when the filter pins the key.
	if f.TenantID != "" {
		c, ok, err := r.get(ctx, f.TenantID)
		if err != nil || !ok || !f.Matches(c) {
			return nil, err
		}
		return []Community{c}, nil
	}
	ids, err := r.cli.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	var out []Community
	for _, id := range ids {
		c, ok, err := r.get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			// index drifted; self-heal
			r.cli.SRem(ctx, redisIndexKey, id)
			continue
		}
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *redisStore) Remove(ctx context.Context, tenantID string) (bool, error) {
	n, err := r.cli.Del(ctx, redisKeyPrefix+tenantID).Result()
	if err != nil {
		return false, err
	}
	r.cli.SRem(ctx, redisIndexKey, tenantID)
	return n > 0, nil
}

func (r *redisStore) get(ctx context.Context, tenantID string) (Community, bool, error) {
	data, err := r.cli.Get(ctx, redisKeyPrefix+tenantID).Bytes()
	if err == redis.Nil {
		return Community{}, false, nil
	}
	if err != nil {
		return Community{}, false, err
	}
	var c Community
	if err := json.Unmarshal(data, &c); err != nil {
		return Community{}, false, err
	}
	return c, true, nil
}
