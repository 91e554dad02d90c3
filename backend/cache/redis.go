package cache

import (
	"context"
	"errors"
	"time"

	"learnhub/backend/models"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	helpfulPrefix = "leaderboard:helpful:"
	generationKey = "leaderboard:generation"
)

// LeaderboardCache keeps serialized leaderboards in Redis.
type LeaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

// NewClient connects to addr and verifies the connection with PING.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *LeaderboardCache) Get(ctx context.Context, key string) ([]models.HelpfulUser, bool, error) {
	raw, err := c.client.Get(ctx, helpfulPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var users []models.HelpfulUser
	if err := sonic.Unmarshal(raw, &users); err != nil {
		return nil, false, err
	}
	if users == nil {
		users = []models.HelpfulUser{}
	}
	return users, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, key string, users []models.HelpfulUser, ttl time.Duration) error {
	raw, err := sonic.Marshal(users)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, helpfulPrefix+key, raw, ttl).Err()
}

// Generation returns the current cache generation, 0 before the first
// invalidation.
func (c *LeaderboardCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Invalidate advances the generation. Entries of older generations are no
// longer read and expire with their TTL.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}
