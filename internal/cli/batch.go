package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/pipeline"
	"github.com/ppiankov/pitchcheck/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	deckTimeout  time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze several pitch decks listed in a file",
	Long: `Batch analyzes many decks concurrently:
- Read deck paths or URLs from the input file (one per line, # for comments)
- Analyze decks in parallel with a configurable worker count
- Write one JSON report per deck into the output directory

Example:
  pitchcheck batch decks.txt
  pitchcheck batch decks.txt --concurrency 4 --out-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "decks analyzed at once (default: concurrency.batch_workers)")
	batchCmd.Flags().StringVar(&outputDir, "out-dir", "./pitchcheck-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for the batch")
	batchCmd.Flags().DurationVar(&deckTimeout, "deck-timeout", 10*time.Minute, "timeout for each deck")
	addPipelineFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.BatchWorkers
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  pitchcheck batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Model:        %s %s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}
	fetcher := pipeline.NewFetcher(cfg.HTTP)

	processor := worker.NewBatchProcessor(func(ctx context.Context, source string) (*model.Analysis, error) {
		ctx, cancel := context.WithTimeout(ctx, deckTimeout)
		defer cancel()
		return analyzeSource(ctx, p, fetcher, source, "")
	}, workers, log)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	written := writeBatchReports(results, outputDir)
	ok, failed := worker.Summary(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d decks\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", ok)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Reports:   %d in %s\n", written, outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failed > 0 && ok == 0 {
		return fmt.Errorf("all %d decks failed", failed)
	}
	return nil
}

// writeBatchReports writes one JSON file per successful deck. Stems that
// collide get a numeric suffix.
func writeBatchReports(results []*worker.DeckResult, dir string) int {
	used := make(map[string]int)
	written := 0
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Source, r.Error)
			continue
		}

		stem := sanitizeFilename(r.Source)
		used[stem]++
		if n := used[stem]; n > 1 {
			stem = fmt.Sprintf("%s-%d", stem, n)
		}

		path := filepath.Join(dir, stem+".json")
		if err := writeJSON(path, r.Analysis); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", r.Source, err)
			continue
		}
		written++
		fmt.Fprintf(os.Stderr, "✓ %s (%d pages, %d findings, %s)\n",
			r.Source, r.Analysis.TotalPages, len(r.Analysis.MatchedFeedback), r.Duration.Round(time.Second))
	}
	return written
}
