package cache

import (
	"context"
	"time"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/metrics"
	"go.uber.org/zap"
)

// Layer is one named tier of a LayeredCache
type Layer struct {
	Name  string
	Cache Cache
}

// LayeredCache reads fastest-first and writes through to every layer
type LayeredCache struct {
	layers []Layer
	logger *zap.Logger
}

// NewLayeredCache orders layers from fastest to slowest
func NewLayeredCache(l *zap.Logger, layers ...Layer) *LayeredCache {
	return &LayeredCache{layers: layers, logger: logger.OrNop(l)}
}

// Get returns the first hit and copies it into the faster layers that missed
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Cache.Get(ctx, key)
		if !found {
			metrics.CacheLookups.WithLabelValues(layer.Name, "miss").Inc()
			continue
		}
		metrics.CacheLookups.WithLabelValues(layer.Name, "hit").Inc()

		for _, faster := range c.layers[:i] {
			if err := faster.Cache.Set(ctx, key, val, 0); err != nil {
				c.logger.Debug("cache backfill failed", zap.String("layer", faster.Name), zap.Error(err))
			}
		}
		return val, true
	}
	return nil, false
}

// Set stores in every layer; a failing layer is logged and the rest still get the value
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var firstErr error
	for _, layer := range c.layers {
		if err := layer.Cache.Set(ctx, key, value, ttl); err != nil {
			c.logger.Warn("cache write failed", zap.String("layer", layer.Name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	for _, layer := range c.layers {
		_ = layer.Cache.Delete(ctx, key)
	}
	return nil
}

func (c *LayeredCache) Clear(ctx context.Context) error {
	var firstErr error
	for _, layer := range c.layers {
		if err := layer.Cache.Clear(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Layers lists layer names, fastest first
func (c *LayeredCache) Layers() []string {
	names := make([]string, len(c.layers))
	for i, l := range c.layers {
		names[i] = l.Name
	}
	return names
}
