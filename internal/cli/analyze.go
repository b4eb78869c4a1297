package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/pipeline"
)

var (
	outJSON        string
	generalContext string
	timeout        time.Duration
	llmProvider    string
	llmModel       string
	selection      string
	validateLinks  bool
	noCache        bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf-path-or-url>",
	Short: "Analyze a single pitch deck",
	Long: `Analyze reads one pitch deck and:
- Tags every slide with a topic
- Checks the founders' backgrounds against web search
- Checks the TAM/SAM figures against market research
- Fact-checks claims about competitors
- Anchors the findings to boxes on the slides

Example:
  pitchcheck analyze deck.pdf
  pitchcheck analyze deck.pdf --json report.json --context "B2B battery storage for farms"
  pitchcheck analyze https://example.com/seed-deck.pdf --provider openai --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "write the full analysis as JSON to this path (- for stdout)")
	analyzeCmd.Flags().StringVar(&generalContext, "context", "", "short description of the company (default: leading deck text)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall analysis timeout")
	addPipelineFlags(analyzeCmd)
}

// addPipelineFlags registers the flags shared by commands that run the pipeline
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&llmProvider, "provider", "", "model provider (anthropic, openai, gemini, ollama)")
	cmd.Flags().StringVar(&llmModel, "model", "", "model name")
	cmd.Flags().StringVar(&selection, "selection", "", "slide selection when several share a topic (first, longest, all)")
	cmd.Flags().BoolVar(&validateLinks, "validate-sources", false, "HEAD-check every collected source URL")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the search result cache")
}

// pipelineConfig loads the configuration and applies the shared flags over it
func pipelineConfig() (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
		applyEnvKeys(cfg)
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if selection != "" {
		cfg.Pipeline.SelectionPolicy = selection
	}
	if validateLinks {
		cfg.Pipeline.ValidateSources = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Model:     %s %s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Timeout:   %v\n\n", timeout)
	}

	analysis, err := analyzeSource(ctx, p, pipeline.NewFetcher(cfg.HTTP), source, generalContext)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if outJSON != "" {
		if err := writeJSON(outJSON, analysis); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if outJSON != "-" {
			fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", outJSON)
		}
	}
	if outJSON != "-" {
		printSummary(cmd.OutOrStdout(), analysis)
	}
	return nil
}
