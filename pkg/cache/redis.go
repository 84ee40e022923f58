package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	IdempotencyKeyTTL    = 24 * time.Hour
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and pings the server.
func NewRedisClient(cfg *Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func NewFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Claim marks key as in use for ttl. It reports false when the key was
// already claimed.
func (r *RedisClient) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, ttl).Result()
}

// Release drops a claim so the key can be used again.
func (r *RedisClient) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
