package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/riskboard/internal/domain/models"
)

type cachedTable struct {
	modTime time.Time
	size    int64
	dataset *models.Dataset
}

// TableCache keeps loaded tables keyed by absolute path.
// An entry is served only while the file's modification time and size are unchanged.
type TableCache struct {
	cache   *gocache.Cache
	loader  *Loader
	metrics Recorder
	group   singleflight.Group
}

// NewTableCache creates a cache whose entries expire after ttl.
func NewTableCache(loader *Loader, ttl, cleanup time.Duration, metrics Recorder) *TableCache {
	if metrics == nil {
		metrics = NopRecorder()
	}
	return &TableCache{
		cache:   gocache.New(ttl, cleanup),
		loader:  loader,
		metrics: metrics,
	}
}

// Get returns the table at path, loading it on a miss or when the file changed.
// Concurrent misses for one path share a single load.
func (c *TableCache) Get(ctx context.Context, path string) (*models.Dataset, error) {
	key := cacheKey(path)
	info, err := os.Stat(key)
	if err != nil {
		c.cache.Delete(key)
		return nil, fmt.Errorf("stat dataset %s: %w", path, err)
	}

	if v, ok := c.cache.Get(key); ok {
		entry := v.(*cachedTable)
		if entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			c.metrics.RecordCacheAccess(true)
			return entry.dataset, nil
		}
	}
	c.metrics.RecordCacheAccess(false)

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		ds := &models.Dataset{
			Name:    DatasetName(key),
			Path:    key,
			ModTime: info.ModTime(),
			Size:    info.Size(),
			Frame:   c.loader.LoadCSV(ctx, key),
		}
		c.cache.SetDefault(key, &cachedTable{modTime: ds.ModTime, size: ds.Size, dataset: ds})
		return ds, nil
	})
	return v.(*models.Dataset), nil
}

// Contains reports whether path currently has an entry.
func (c *TableCache) Contains(path string) bool {
	_, ok := c.cache.Get(cacheKey(path))
	return ok
}

// Invalidate drops the entry for path.
func (c *TableCache) Invalidate(path string) {
	c.cache.Delete(cacheKey(path))
}

// Flush drops every entry.
func (c *TableCache) Flush() {
	c.cache.Flush()
}

// Len returns the number of entries, including expired ones not yet cleaned up.
func (c *TableCache) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
