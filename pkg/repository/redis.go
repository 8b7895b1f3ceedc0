package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/fooddash/pkg/config"
	"github.com/example/fooddash/pkg/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned by cache reads when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

// NewRedisRepositoryWithClient wraps an existing client.
func NewRedisRepositoryWithClient(client *redis.Client, cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{client: client, config: cfg}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func userCacheKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// CacheUser stores the public profile. The password hash is not serialized.
func (r *RedisRepository) CacheUser(ctx context.Context, user *models.User) error {
	return r.SetJSON(ctx, userCacheKey(user.ID), user, r.config.UserTTL)
}

func (r *RedisRepository) GetUserCache(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.GetJSON(ctx, userCacheKey(userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *RedisRepository) InvalidateUser(ctx context.Context, userID string) error {
	return r.Del(ctx, userCacheKey(userID))
}

func checkoutLockKey(userID string) string {
	return fmt.Sprintf("checkout:lock:%s", userID)
}

// AcquireCheckoutLock takes the per-user checkout lock. It reports false
// when another checkout holds it. The returned release func is a no-op when
// the lock was not acquired.
func (r *RedisRepository) AcquireCheckoutLock(ctx context.Context, userID string, ttl time.Duration) (bool, func(context.Context) error, error) {
	key := checkoutLockKey(userID)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, noopRelease, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !ok {
		return false, noopRelease, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to release checkout lock: %w", err)
		}
		return nil
	}
	return true, release, nil
}

func noopRelease(context.Context) error { return nil }
