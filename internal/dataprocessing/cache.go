package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"enrolpulse/internal/files"
)

// Cache modes.
const (
	// CacheModeModTime reloads when the file listing fingerprint changes.
	CacheModeModTime = "modtime"
	// CacheModeProcess keeps the first load for the life of the process.
	CacheModeProcess = "process"
)

// LoadObserver receives cache and load events, typically for metrics.
type LoadObserver interface {
	RecordCacheLookup(ctx context.Context, hit bool)
	RecordDatasetLoad(ctx context.Context, files, rows int)
}

// CacheStats reports cache activity.
type CacheStats struct {
	Mode   string
	Hits   int64
	Misses int64
	Loads  int64
}

// DatasetCache memoizes loaded datasets per absolute directory.
type DatasetCache struct {
	loader   *Loader
	mode     string
	logger   *slog.Logger
	observer LoadObserver

	mu      sync.RWMutex
	entries map[string]*Dataset
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewDatasetCache creates a cache. An empty mode means CacheModeModTime.
func NewDatasetCache(loader *Loader, mode string, logger *slog.Logger) (*DatasetCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch mode {
	case "":
		mode = CacheModeModTime
	case CacheModeModTime, CacheModeProcess:
	default:
		return nil, fmt.Errorf("unknown cache mode %q", mode)
	}

	return &DatasetCache{
		loader:  loader,
		mode:    mode,
		logger:  logger.With(slog.String("component", "dataset_cache")),
		entries: make(map[string]*Dataset),
	}, nil
}

// SetObserver attaches an observer for cache events.
func (c *DatasetCache) SetObserver(o LoadObserver) {
	c.observer = o
}

// Mode returns the invalidation mode.
func (c *DatasetCache) Mode() string {
	return c.mode
}

// Get returns the dataset for dir, loading it when absent or stale.
func (c *DatasetCache) Get(ctx context.Context, dir string) (*Dataset, error) {
	key, err := filepath.Abs(dir)
	if err != nil {
		key = dir
	}

	c.mu.RLock()
	cached := c.entries[key]
	c.mu.RUnlock()

	if cached != nil && c.mode == CacheModeProcess {
		c.recordLookup(ctx, true)
		return cached, nil
	}

	found, err := c.loader.Scan(key)
	if err != nil {
		return nil, err
	}
	fingerprint := files.Fingerprint(found)

	if cached != nil && cached.Fingerprint == fingerprint {
		c.recordLookup(ctx, true)
		return cached, nil
	}
	c.recordLookup(ctx, false)

	v, err, shared := c.group.Do(key+"|"+fingerprint, func() (interface{}, error) {
		// joined callers share this load, so one caller's cancellation must not fail the rest
		ctx := context.WithoutCancel(ctx)
		ds, err := c.loader.LoadFiles(ctx, key, found)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = ds
		c.mu.Unlock()

		c.loads.Add(1)
		if c.observer != nil {
			c.observer.RecordDatasetLoad(ctx, len(ds.Files), ds.Table.Len())
		}
		if cached != nil {
			c.logger.InfoContext(ctx, "Dataset changed on disk, reloaded",
				slog.String("dir", key),
				slog.String("previous", cached.Fingerprint),
				slog.String("current", ds.Fingerprint))
		}
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "Joined in-flight dataset load", slog.String("dir", key))
	}
	return v.(*Dataset), nil
}

// Peek returns the cached dataset for dir without scanning or loading.
func (c *DatasetCache) Peek(dir string) (*Dataset, bool) {
	key, err := filepath.Abs(dir)
	if err != nil {
		key = dir
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[key]
	return ds, ok
}

// Invalidate drops every cached dataset.
func (c *DatasetCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*Dataset)
	c.mu.Unlock()
	c.logger.Info("Dataset cache invalidated")
}

// Reload invalidates the cache and loads dir again.
func (c *DatasetCache) Reload(ctx context.Context, dir string) (*Dataset, error) {
	c.Invalidate()
	return c.Get(ctx, dir)
}

// Stats returns a snapshot of cache counters.
func (c *DatasetCache) Stats() CacheStats {
	return CacheStats{
		Mode:   c.mode,
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Loads:  c.loads.Load(),
	}
}

func (c *DatasetCache) recordLookup(ctx context.Context, hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.observer != nil {
		c.observer.RecordCacheLookup(ctx, hit)
	}
}
