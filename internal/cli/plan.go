package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pitchcheck/internal/llm"
	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/pipeline"
	"github.com/ppiankov/pitchcheck/internal/search"
)

var planTimeout time.Duration

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan <pdf>",
	Short: "Classify a deck and print the verification plan",
	Long: `Plan extracts and classifies a deck without running any verification,
then prints the slide topics and the stages that would run, as a Mermaid graph.

Example:
  pitchcheck plan deck.pdf > plan.mmd`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().DurationVar(&planTimeout, "timeout", 3*time.Minute, "classification timeout")
	addPipelineFlags(planCmd)
}

// errSearchUnused is returned by the search stub planning runs with
var errSearchUnused = errors.New("web search is not used when planning")

type noSearch struct{}

func (noSearch) Search(context.Context, string, int) (*search.Response, error) {
	return nil, errSearchUnused
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), planTimeout)
	defer cancel()

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP), log)
	if err != nil {
		return fmt.Errorf("model provider: %w", err)
	}
	p, err := pipeline.New(cfg, provider, noSearch{}, log)
	if err != nil {
		return err
	}

	prep, err := p.Prepare(ctx, pipeline.Input{Path: args[0]})
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}
	printPlan(cmd.OutOrStdout(), prep)
	return nil
}

// printPlan writes the topic table as Mermaid comments followed by the graph
func printPlan(w io.Writer, prep *pipeline.Prepared) {
	fmt.Fprintf(w, "%%%% %d pages\n", len(prep.Deck.Pages))
	for _, t := range prep.Topics {
		fmt.Fprintf(w, "%%%% page %d: %s\n", t.PageNumber, t.Topic)
	}
	for _, warning := range prep.Warnings {
		fmt.Fprintf(w, "%%%% warning: %s\n", warning)
	}
	fmt.Fprint(w, prep.Plan.Mermaid())
}
