package repository

import (
	"context"
	"testing"
	"time"

	"github.com/example/fooddash/pkg/config"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newDownRedis points at a port nothing listens on.
func newDownRedis(t *testing.T) *RedisRepository {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepositoryWithClient(client, &config.RedisConfig{UserTTL: time.Minute})
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "user:u1", userCacheKey("u1"))
	assert.Equal(t, "checkout:lock:u1", checkoutLockKey("u1"))
}

func TestRedisRepository_LockFailsClosedWhenDown(t *testing.T) {
	repo := newDownRedis(t)

	ok, release, err := repo.AcquireCheckoutLock(context.Background(), "u1", time.Second)
	require.Error(t, err)
	assert.False(t, ok)
	require.NotNil(t, release)
	assert.NoError(t, release(context.Background()))
}

func TestRedisRepository_CacheErrorsAreNotMisses(t *testing.T) {
	repo := newDownRedis(t)

	_, err := repo.GetUserCache(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, repo.Ping(context.Background()))
}

func TestUserRepository_ServesWithCacheDown(t *testing.T) {
	repo := NewUserRepository(openTestDB(t), newDownRedis(t), time.Second, zap.NewNop())
	ctx := context.Background()

	user := newUser("down@example.com")
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	updated, err := repo.UpdateProfile(ctx, user.ID, map[string]interface{}{"name": "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", updated.Name)
}
