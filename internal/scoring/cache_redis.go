package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "vouch/pkg/domain"
)

// RedisScoreCache caches public score reads. Entries are invalidated on
// every recompute, so the TTL is only a backstop against missed
// invalidations.
type RedisScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisScoreCache(client *redis.Client, ttl time.Duration) *RedisScoreCache {
	return &RedisScoreCache{client: client, ttl: ttl}
}

func (c *RedisScoreCache) Get(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, bool, error) {
	score, err := c.client.Get(ctx, c.key(domainID, account)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("score cache get: %w", err)
	}
	return score, true, nil
}

func (c *RedisScoreCache) Set(ctx context.Context, domainID id.DomainID, account id.AccountID, score int64) error {
	if err := c.client.Set(ctx, c.key(domainID, account), strconv.FormatInt(score, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("score cache set: %w", err)
	}
	return nil
}

func (c *RedisScoreCache) Invalidate(ctx context.Context, domainID id.DomainID, account id.AccountID) error {
	if err := c.client.Del(ctx, c.key(domainID, account)).Err(); err != nil {
		return fmt.Errorf("score cache invalidate: %w", err)
	}
	return nil
}

func (c *RedisScoreCache) key(domainID id.DomainID, account id.AccountID) string {
	return fmt.Sprintf("vouch:score:%s:%s", domainID, account)
}
