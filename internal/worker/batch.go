package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// AnalyzeFunc analyzes one deck, given as a local path or a URL
type AnalyzeFunc func(ctx context.Context, source string) (*model.Analysis, error)

// DeckResult is the outcome of one batch entry
type DeckResult struct {
	Source   string
	Analysis *model.Analysis
	Error    error
	Duration time.Duration
}

// BatchProcessor analyzes several decks concurrently
type BatchProcessor struct {
	analyze     AnalyzeFunc
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(analyze AnalyzeFunc, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		analyze:     analyze,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessSources analyzes every source. One failing deck does not stop the
// others. Results keep the input order.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*DeckResult {
	if len(sources) == 0 {
		return []*DeckResult{}
	}

	pool := NewPool[*DeckResult](ctx, b.concurrency)
	pool.Start()

	accepted := make([]int, 0, len(sources))
	for i, source := range sources {
		source := source
		if pool.Submit(func(ctx context.Context) *DeckResult {
			return b.run(ctx, source)
		}) {
			accepted = append(accepted, i)
		}
	}

	out := make([]*DeckResult, len(sources))
	for j, r := range pool.Wait() {
		out[accepted[j]] = r
	}
	for i, r := range out {
		if r == nil {
			out[i] = &DeckResult{Source: sources[i], Error: ctx.Err()}
		}
	}
	return out
}

func (b *BatchProcessor) run(ctx context.Context, source string) *DeckResult {
	start := time.Now()
	analysis, err := b.analyze(ctx, source)
	elapsed := time.Since(start)

	if err != nil {
		b.logger.Warn("deck analysis failed",
			zap.String("source", source),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		b.logger.Info("deck analyzed",
			zap.String("source", source),
			zap.Int("pages", analysis.TotalPages),
			zap.Duration("elapsed", elapsed))
	}

	return &DeckResult{Source: source, Analysis: analysis, Error: err, Duration: elapsed}
}

// ProcessFile reads sources from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DeckResult, error) {
	sources, err := ReadSources(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return b.ProcessSources(ctx, sources), nil
}

// ReadSources reads deck paths or URLs, one per line. Blank lines and
// # comments are skipped; duplicates keep their first position.
func ReadSources(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return sources, nil
}

// Summary counts successes and failures
func Summary(results []*DeckResult) (ok, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}
