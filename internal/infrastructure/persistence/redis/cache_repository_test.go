package redis

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

func TestCacheRepository_Key_ShouldApplyPrefix(t *testing.T) {
	repo := NewCacheRepository(nil, "ragchef:", zaptest.NewLogger(t))
	assert.Equal(t, "ragchef:verdict:tofu", repo.key("verdict:tofu"))
}

// TestCacheRepository_Integration runs against a live server when REDIS_TEST_HOST is set.
func TestCacheRepository_Integration(t *testing.T) {
	host := os.Getenv("REDIS_TEST_HOST")
	if host == "" {
		t.Skip("REDIS_TEST_HOST not set")
	}
	port := 6379
	if p, err := strconv.Atoi(os.Getenv("REDIS_TEST_PORT")); err == nil {
		port = p
	}

	ctx := context.Background()
	client, err := NewClient(ctx, config.RedisConfig{
		Host:         host,
		Port:         port,
		PoolSize:     2,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewCacheRepository(client, "ragchef-test:", zaptest.NewLogger(t))

	t.Run("Get_ShouldMissForUnknownKey", func(t *testing.T) {
		_, err := repo.Get(ctx, "absent")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
	})

	t.Run("Set_ShouldRoundTrip", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
		t.Cleanup(func() { _ = repo.Delete(ctx, "k") })

		got, err := repo.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", string(got))

		exists, err := repo.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
