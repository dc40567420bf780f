package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zachkp/folio/internal/theme"
	"github.com/redis/go-redis/v9"
)

// RedisPreferences keeps theme choices in Redis, one key per visitor and
// preference, expiring after ttl.
type RedisPreferences struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisPreferences connects to redisURL and checks the connection.
func NewRedisPreferences(ctx context.Context, redisURL string, ttl time.Duration) (*RedisPreferences, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisPreferencesWithClient(client, ttl), nil
}

// NewRedisPreferencesWithClient wraps an existing client.
func NewRedisPreferencesWithClient(client *redis.Client, ttl time.Duration) *RedisPreferences {
	return &RedisPreferences{client: client, prefix: "folio:pref:", ttl: ttl}
}

// Preferences returns the theme storage for one visitor.
func (r *RedisPreferences) Preferences(visitorID string) theme.Storage {
	return &redisVisitor{r: r, visitorID: visitorID}
}

func (r *RedisPreferences) key(visitorID, key string) string {
	return r.prefix + visitorID + ":" + key
}

// DeletePreferences removes every stored choice of a visitor.
func (r *RedisPreferences) DeletePreferences(ctx context.Context, visitorID string) error {
	iter := r.client.Scan(ctx, 0, r.key(visitorID, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan preferences: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisPreferences) Close() error {
	return r.client.Close()
}

// Ping checks if Redis is reachable
func (r *RedisPreferences) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type redisVisitor struct {
	r         *RedisPreferences
	visitorID string
}

func (v *redisVisitor) Get(ctx context.Context, key string) (string, error) {
	val, err := v.r.client.Get(ctx, v.r.key(v.visitorID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", theme.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get preference: %w", err)
	}
	return val, nil
}

func (v *redisVisitor) Set(ctx context.Context, key, value string) error {
	if err := v.r.client.Set(ctx, v.r.key(v.visitorID, key), value, v.r.ttl).Err(); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}
