package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/model"
	"go.uber.org/zap"
)

// Cache stores opaque byte payloads, currently search responses
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

const keyPrefix = "pitchcheck:v1:"

// Key derives a stable cache key from a namespace and the request parts.
// Parts are case-folded and trimmed so "Acme pricing" and "acme pricing " share an entry.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	return keyPrefix + namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// New assembles the configured layers: memory, then disk, then Redis when an address is set.
// It returns nil when caching is disabled.
func New(cfg model.CacheConfig, logger *zap.Logger) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	layers := []Layer{
		{Name: "memory", Cache: NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)},
	}
	if cfg.Dir != "" {
		layers = append(layers, Layer{Name: "disk", Cache: NewDiskCache(cfg.Dir, cfg.DiskTTL)})
	}
	if cfg.RedisAddr != "" {
		rc, err := NewRedisCache(cfg.RedisAddr, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			return nil, err
		}
		layers = append(layers, Layer{Name: "redis", Cache: rc})
	}

	return NewLayeredCache(logger, layers...), nil
}
