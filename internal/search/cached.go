package search

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ppiankov/pitchcheck/internal/cache"
	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/metrics"
	"go.uber.org/zap"
)

// CachedSearcher answers repeated queries from a cache.
// Only successful responses are stored.
type CachedSearcher struct {
	next   Searcher
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// WithCache wraps s; a nil cache returns s unchanged
func WithCache(s Searcher, c cache.Cache, ttl time.Duration, l *zap.Logger) Searcher {
	if c == nil {
		return s
	}
	return &CachedSearcher{next: s, cache: c, ttl: ttl, logger: logger.OrNop(l)}
}

func (s *CachedSearcher) Search(ctx context.Context, query string, maxResults int) (*Response, error) {
	key := cache.Key("search", query, strconv.Itoa(maxResults))

	if raw, ok := s.cache.Get(ctx, key); ok {
		var resp Response
		if err := json.Unmarshal(raw, &resp); err == nil {
			metrics.SearchCalls.WithLabelValues("cache_hit").Inc()
			return &resp, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	resp, err := s.next.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Debug("search cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}
