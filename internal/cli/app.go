package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/pitchcheck/internal/llm"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/pipeline"
	"github.com/ppiankov/pitchcheck/internal/search"
	"github.com/ppiankov/pitchcheck/internal/util"
)

// deckAnalyzer is the part of the pipeline the commands drive
type deckAnalyzer interface {
	Analyze(ctx context.Context, in pipeline.Input) (*model.Analysis, error)
}

// newPipeline wires the configured model provider and search client
func newPipeline(cfg *model.Config, l *zap.Logger) (*pipeline.Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP), l)
	if err != nil {
		return nil, fmt.Errorf("model provider: %w", err)
	}
	searcher, err := search.New(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}
	return pipeline.New(cfg, provider, searcher, l)
}

// analyzeSource analyzes a local PDF or downloads one first
func analyzeSource(ctx context.Context, a deckAnalyzer, fetcher *pipeline.Fetcher, source, generalContext string) (*model.Analysis, error) {
	path := source
	if pipeline.IsURL(source) {
		fetched, err := fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch deck: %w", err)
		}
		defer fetched.Remove()
		path = fetched.Path
	} else if !strings.EqualFold(filepath.Ext(source), ".pdf") {
		return nil, model.NewError(model.KindValidation, "Only PDF files are supported", nil)
	}

	analysis, err := a.Analyze(ctx, pipeline.Input{Path: path, GeneralContext: generalContext})
	if err != nil {
		return nil, err
	}
	analysis.Source = source
	return analysis, nil
}

// writeJSON writes v indented to path, or to stdout when path is "-"
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// printSummary writes a human-readable digest of an analysis
func printSummary(w io.Writer, a *model.Analysis) {
	fmt.Fprintf(w, "Deck:        %s (%d pages)\n", a.Source, a.TotalPages)
	fmt.Fprintf(w, "Plan:        %s\n", orDash(strings.Join(a.Plan, ", ")))

	if a.Market != nil {
		fmt.Fprintf(w, "\nMarket size (page %d)\n  %s\n", a.Market.PageNumber, oneLine(a.Market.Info))
	}
	if a.Team != nil {
		fmt.Fprintf(w, "\nTeam (page %d, %d founders)\n  %s\n", a.Team.PageNumber, a.Team.TotalFounders, oneLine(a.Team.WrittenFeedback))
	}
	if a.Competition != nil {
		s := a.Competition.AccuracySummary
		fmt.Fprintf(w, "\nCompetitors (page %d, %d claims, %s)\n  %s\n",
			a.Competition.PageNumber, s.TotalClaims, s.CredibilityRating, oneLine(a.Competition.WrittenFeedback))
	}

	if len(a.MatchedFeedback) > 0 {
		fmt.Fprintf(w, "\nSlide feedback\n")
		for _, f := range a.MatchedFeedback {
			fmt.Fprintf(w, "  [p%d %s] %s\n", f.PageNumber, f.Status, oneLine(f.Feedback))
		}
	}
	if len(a.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings\n")
		for _, warning := range a.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warning)
		}
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// sanitizeFilename turns a deck path or URL into a report file stem
func sanitizeFilename(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		":", "_", "*", "_", "?", "_", "\"", "_",
		"<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)

	s = util.Truncate(s, 100)
	if s == "" || s == "." {
		s = "deck"
	}
	return s
}
