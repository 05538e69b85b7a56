package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

const exportKeyPrefix = "riskboard:export:"

// ExportCache stores rendered exports of uploaded tables.
type ExportCache interface {
	// Get returns the cached payload; ok is false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
}

// ExportKey derives the cache key of an export from the upload bytes, the scoring policy and
// missing-value policy it was scored under, the filter and the format.
func ExportKey(upload []byte, policy models.ScoringPolicy, missing constants.MissingPolicy, filter models.StartupFilter, format string) string {
	h := sha256.New()
	h.Write(upload)
	for _, part := range []interface{}{policy, missing, filter} {
		h.Write([]byte{0})
		encoded, _ := json.Marshal(part)
		h.Write(encoded)
	}
	h.Write([]byte{0})
	h.Write([]byte(format))
	return exportKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

type redisExportCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    logger.Logger
}

// NewExportCache creates an ExportCache on client with entries living ttl.
func NewExportCache(client redis.UniversalClient, ttl time.Duration, log logger.Logger) ExportCache {
	return &redisExportCache{client: client, ttl: ttl, log: log.WithComponent("export_cache")}
}

func (c *redisExportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.ErrCacheUnavailable(err.Error()).WithCause(err)
	}
	return val, true, nil
}

func (c *redisExportCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.ErrCacheUnavailable(err.Error()).WithCause(err)
	}
	c.log.Debug(ctx, "Export cached", logger.Fields{"key": key, "bytes": len(data)})
	return nil
}

func (c *redisExportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

type noopExportCache struct{}

// NewNoopExportCache returns a cache that never hits, for deployments without Redis.
func NewNoopExportCache() ExportCache { return noopExportCache{} }

func (noopExportCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopExportCache) Set(context.Context, string, []byte) error         { return nil }
func (noopExportCache) Ping(context.Context) error                        { return nil }
