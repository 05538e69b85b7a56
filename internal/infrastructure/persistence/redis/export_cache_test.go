package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/riskboard/internal/config"
	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/constants"
	apperrors "github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisConnection) {
	t.Helper()
	mr := miniredis.RunT(t)
	conn := NewRedisConnection(&config.RedisConfig{Address: mr.Addr()}, logger.NewNoopLogger())
	require.NoError(t, conn.Connect(context.Background()))
	t.Cleanup(func() { _ = conn.Close() })
	return mr, conn
}

func TestExportKey(t *testing.T) {
	upload := []byte("company,revenue\nA,1\n")
	minRisk := 10.0
	policy := models.DefaultScoringPolicy()
	propagate := constants.MissingPolicyPropagate

	k1 := ExportKey(upload, policy, propagate, models.StartupFilter{}, "csv")
	assert.Equal(t, k1, ExportKey(upload, policy, propagate, models.StartupFilter{}, "csv"))
	assert.NotEqual(t, k1, ExportKey(upload, policy, propagate, models.StartupFilter{}, "xlsx"))
	assert.NotEqual(t, k1, ExportKey(upload, policy, propagate, models.StartupFilter{MinRisk: &minRisk}, "csv"))
	assert.NotEqual(t, k1, ExportKey([]byte("other"), policy, propagate, models.StartupFilter{}, "csv"))
	assert.NotEqual(t, k1, ExportKey(upload, policy, constants.MissingPolicyNeutral, models.StartupFilter{}, "csv"))

	v2 := policy
	v2.Version = "v2"
	assert.NotEqual(t, k1, ExportKey(upload, v2, propagate, models.StartupFilter{}, "csv"))
	assert.Len(t, k1, len(exportKeyPrefix)+64)
}

func TestExportCache_RoundTrip(t *testing.T) {
	mr, conn := setupRedis(t)
	cache := NewExportCache(conn.GetClient(), time.Minute, logger.NewNoopLogger())
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", []byte("payload")))
	data, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, cache.Ping(ctx))
}

func TestExportCache_Unavailable(t *testing.T) {
	mr, conn := setupRedis(t)
	cache := NewExportCache(conn.GetClient(), time.Minute, logger.NewNoopLogger())
	mr.Close()

	_, _, err := cache.Get(context.Background(), "k")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeServiceUnavailable, appErr.Code())
	assert.Error(t, cache.Set(context.Background(), "k", []byte("x")))
}

func TestRedisConnection_ConnectFails(t *testing.T) {
	conn := NewRedisConnection(&config.RedisConfig{Address: "127.0.0.1:1"}, logger.NewNoopLogger())
	assert.Error(t, conn.Connect(context.Background()))
	assert.Nil(t, conn.GetClient())
	assert.Error(t, conn.Ping(context.Background()))
	assert.NoError(t, conn.Close())
}

func TestNoopExportCache(t *testing.T) {
	cache := NewNoopExportCache()
	require.NoError(t, cache.Set(context.Background(), "k", []byte("x")))
	_, ok, err := cache.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}
