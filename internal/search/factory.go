package search

import (
	"github.com/ppiankov/pitchcheck/internal/cache"
	"github.com/ppiankov/pitchcheck/internal/model"
	"go.uber.org/zap"
)

// New builds the Tavily client behind the configured cache layers
func New(cfg *model.Config, l *zap.Logger) (Searcher, error) {
	client, err := NewTavilyClient(cfg.Search, cfg.HTTP, l)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Cache, l)
	if err != nil {
		return nil, err
	}
	return WithCache(client, c, 0, l), nil
}
