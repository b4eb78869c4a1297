// Package pipeline runs a deck analysis: extraction, classification, the
// verification agents planned from the slide topics, synthesis and source checks.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/agents"
	"github.com/ppiankov/pitchcheck/internal/extract"
	"github.com/ppiankov/pitchcheck/internal/llm"
	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/metrics"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/pdf"
	"github.com/ppiankov/pitchcheck/internal/score"
	"github.com/ppiankov/pitchcheck/internal/search"
	"github.com/ppiankov/pitchcheck/internal/util"
	"github.com/ppiankov/pitchcheck/internal/validate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Input is one analysis request. Either Path or Deck must be set; with both,
// Deck is used and Path only serves page images.
type Input struct {
	Path           string
	Deck           *model.Deck
	GeneralContext string
	Images         agents.PageImager // Overrides rendering from Path
}

// Pipeline orchestrates the complete analysis
type Pipeline struct {
	config    *model.Config
	extractor *pdf.Extractor
	llm       llm.Provider
	search    search.Searcher
	validator *validate.Validator
	scorer    *score.Scorer
	policy    SelectionPolicy
	tasks     []TaskSpec
	logger    *zap.Logger
}

// New creates a pipeline from the configuration and its two upstream collaborators
func New(cfg *model.Config, provider llm.Provider, searcher search.Searcher, l *zap.Logger) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("pipeline needs a model provider")
	}
	if searcher == nil {
		return nil, fmt.Errorf("pipeline needs a web search client")
	}
	policy, err := ParseSelectionPolicy(cfg.Pipeline.SelectionPolicy)
	if err != nil {
		return nil, err
	}

	l = logger.OrNop(l)
	return &Pipeline{
		config:    cfg,
		extractor: pdf.NewExtractor(l),
		llm:       provider,
		search:    searcher,
		validator: validate.NewValidator(cfg, l),
		scorer:    score.NewScorer(),
		policy:    policy,
		tasks:     DefaultTasks,
		logger:    l,
	}, nil
}

// run is the per-request state shared read-only by the tasks
type run struct {
	deck    *model.Deck
	targets map[string]agents.Target
	deps    agents.Deps
}

// Prepared is a classified deck with its plan, before any agent has run
type Prepared struct {
	Deck     *model.Deck
	Topics   []model.TopicAssignment
	Plan     *Plan
	Warnings []string
}

// ModelAvailable reports whether the model provider answers
func (p *Pipeline) ModelAvailable(ctx context.Context) bool {
	return p.llm.IsAvailable(ctx)
}

// Prepare extracts and classifies the deck and computes the plan
func (p *Pipeline) Prepare(ctx context.Context, in Input) (*Prepared, error) {
	deck, err := p.loadDeck(ctx, in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	classifier := agents.NewClassifier(p.agentDeps(nil), p.config.Concurrency.ClassifierWorkers, p.config.Pipeline.ClassifierRetries)
	topics, warnings, err := classifier.Classify(ctx, deck.Pages)
	metrics.StageDuration.WithLabelValues(StageClassify).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	plan, err := BuildPlan(p.tasks, model.TopicsPresent(topics))
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	return &Prepared{Deck: deck, Topics: topics, Plan: plan, Warnings: warnings}, nil
}

// Analyze runs the whole analysis. Upstream model or search errors abort it;
// degraded stage results are reported as warnings.
func (p *Pipeline) Analyze(ctx context.Context, in Input) (*model.Analysis, error) {
	start := time.Now()
	analysis, err := p.analyze(ctx, in)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		p.logger.Error("analysis failed", zap.String("source", sourceName(in)), zap.Error(err))
		return nil, err
	}
	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	p.logger.Info("analysis finished",
		zap.String("source", sourceName(in)),
		zap.Int("pages", analysis.TotalPages),
		zap.Strings("plan", analysis.Plan),
		zap.Int("warnings", len(analysis.Warnings)),
		zap.Duration("duration", time.Since(start)))
	return analysis, nil
}

func (p *Pipeline) analyze(ctx context.Context, in Input) (*model.Analysis, error) {
	images := in.Images
	if images == nil && in.Path != "" {
		renderer, err := pdf.NewRenderer(in.Path, p.config.PDF)
		if err != nil {
			p.logger.Warn("page rendering unavailable, agents get text only", zap.Error(err))
		} else {
			defer renderer.Close()
			images = renderer
		}
	}

	prep, err := p.Prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	deck := prep.Deck

	analysis := &model.Analysis{
		Source:          deck.Source,
		AnalyzedAt:      time.Now().UTC(),
		GeneralContext:  p.generalContext(in, deck),
		Topics:          prep.Topics,
		TotalPages:      len(deck.Pages),
		Plan:            prep.Plan.Tasks(),
		MatchedFeedback: []model.FeedbackItem{},
		Warnings:        append([]string(nil), prep.Warnings...),
	}

	r := &run{
		deck:    deck,
		targets: make(map[string]agents.Target),
		deps:    p.agentDeps(images),
	}
	for stage, topic := range stageTopics {
		if t, ok := SelectTarget(prep.Topics, topic, p.policy); ok {
			r.targets[stage] = t
		}
	}

	reducer := NewReducer(analysis)
	if err := p.execute(ctx, prep.Plan, r, analysis.GeneralContext, reducer); err != nil {
		return nil, err
	}

	p.checkCitations(analysis, reducer.Evidence())

	start := time.Now()
	sources, err := p.validator.Validate(ctx, reducer.Evidence())
	metrics.StageDuration.WithLabelValues(StageValidate).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("validate sources: %w", err)
	}
	analysis.Sources = sources
	analysis.SourceSignals = p.scorer.SourceSignals(sources)

	return analysis, nil
}

// execute runs the plan level by level; tasks within a level run concurrently
func (p *Pipeline) execute(ctx context.Context, plan *Plan, r *run, generalContext string, reducer *Reducer) error {
	workers := p.config.Concurrency.StageWorkers
	if workers <= 0 {
		workers = 3
	}

	done := make(map[string]StageOutput)
	for _, level := range plan.Levels {
		outputs := make([]StageOutput, len(level))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, name := range level {
			upstream := make(map[string]StageOutput, len(plan.DependsOn(name)))
			for _, dep := range plan.DependsOn(name) {
				upstream[dep] = done[dep]
			}
			g.Go(func() error {
				start := time.Now()
				out, err := p.runTask(gctx, name, r, generalContext, upstream)
				metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				out.Stage = name
				outputs[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, name := range level {
			if err := reducer.Apply(outputs[i]); err != nil {
				return err
			}
			done[name] = outputs[i]
		}
	}
	return nil
}

// stageTopics maps each verification stage to the topic of its slides
var stageTopics = map[string]model.Topic{
	StageMarket:      model.TopicMarketSize,
	StageFounders:    model.TopicTeam,
	StageCompetitors: model.TopicCompetitors,
}

func (p *Pipeline) runTask(ctx context.Context, name string, r *run, generalContext string, upstream map[string]StageOutput) (StageOutput, error) {
	target, hasTarget := r.targets[name]
	if !hasTarget && name != StageSynthesis {
		// Only reachable with a custom task list
		return StageOutput{}, nil
	}

	switch name {
	case StageMarket:
		out, err := agents.NewMarketAgent(r.deps).Run(ctx, target, generalContext)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{
			Market:   out,
			Evidence: stageEvidence(name, urlHits(out.Sources), out.Info),
		}, nil

	case StageFounders:
		out, warnings, err := agents.NewFoundersAgent(r.deps).Run(ctx, target, generalContext)
		if err != nil {
			return StageOutput{}, err
		}
		var hits []model.SearchHit
		for _, f := range out.VerifiedFounders {
			hits = append(hits, f.InternetVerification.LinkedInSearch...)
			hits = append(hits, f.InternetVerification.StartupSearch...)
		}
		return StageOutput{
			Team:     out,
			Evidence: stageEvidence(name, hits, out.WrittenFeedback),
			Warnings: warnings,
		}, nil

	case StageCompetitors:
		out, warnings, err := agents.NewCompetitorsAgent(r.deps).Run(ctx, target, generalContext)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{
			Competition: out,
			Evidence:    stageEvidence(name, urlHits(out.Sources), out.WrittenFeedback),
			Warnings:    warnings,
		}, nil

	case StageSynthesis:
		items, warnings, err := agents.NewSynthesizer(r.deps).Run(ctx, synthesisInputs(r, upstream))
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Matched: items, Warnings: warnings}, nil
	}

	return StageOutput{}, fmt.Errorf("unknown task %q", name)
}

// synthesisInputs pairs each finished agent's narrative with the slides it read
func synthesisInputs(r *run, upstream map[string]StageOutput) []agents.SynthesisInput {
	var inputs []agents.SynthesisInput
	add := func(stage, narrative string) {
		target, ok := r.targets[stage]
		if !ok {
			return
		}
		for _, n := range target.Pages {
			if page, ok := r.deck.Page(n); ok {
				inputs = append(inputs, agents.SynthesisInput{Topic: stageTopics[stage], Page: page, Narrative: narrative})
			}
		}
	}

	// Fixed order keeps the prompt stable
	if out, ok := upstream[StageFounders]; ok && out.Team != nil {
		add(StageFounders, out.Team.WrittenFeedback)
	}
	if out, ok := upstream[StageMarket]; ok && out.Market != nil {
		add(StageMarket, out.Market.Info)
	}
	if out, ok := upstream[StageCompetitors]; ok && out.Competition != nil {
		add(StageCompetitors, out.Competition.WrittenFeedback)
	}
	return inputs
}

func stageEvidence(stage string, hits []model.SearchHit, narrative string) []model.Evidence {
	evidence := extract.EvidenceFromHits(stage, hits)
	evidence = append(evidence, extract.EvidenceFromNarrative(stage, narrative)...)
	return extract.DedupeEvidence(evidence)
}

func urlHits(urls []string) []model.SearchHit {
	hits := make([]model.SearchHit, len(urls))
	for i, u := range urls {
		hits[i] = model.SearchHit{URL: u}
	}
	return hits
}

// checkCitations warns about narrative URLs that no search returned
func (p *Pipeline) checkCitations(analysis *model.Analysis, evidence []model.Evidence) {
	if !p.config.LLM.StrictEvidence {
		return
	}

	var allowed []string
	for _, ev := range evidence {
		if ev.Kind == model.EvidenceKindSearchResult {
			allowed = append(allowed, ev.URL)
		}
	}

	narratives := map[string]string{}
	if analysis.Market != nil {
		narratives[StageMarket] = analysis.Market.Info
	}
	if analysis.Team != nil {
		narratives[StageFounders] = analysis.Team.WrittenFeedback
	}
	if analysis.Competition != nil {
		narratives[StageCompetitors] = analysis.Competition.WrittenFeedback
	}

	for _, stage := range []string{StageMarket, StageFounders, StageCompetitors} {
		_, leaked := llm.CheckCitations(narratives[stage], allowed)
		for _, u := range leaked {
			analysis.Warnings = append(analysis.Warnings,
				fmt.Sprintf("%s narrative cites a source no search returned: %s", stage, u))
		}
	}
}

// loadDeck returns the pre-extracted deck or extracts it from Path
func (p *Pipeline) loadDeck(ctx context.Context, in Input) (*model.Deck, error) {
	deck := in.Deck
	if deck == nil {
		if in.Path == "" {
			return nil, model.NewError(model.KindValidation, "no deck to analyze", nil)
		}
		start := time.Now()
		extracted, err := p.extractor.Extract(ctx, in.Path)
		metrics.StageDuration.WithLabelValues(StageExtract).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		deck = extracted
	}
	if err := deck.CheckPageNumbers(); err != nil {
		return nil, err
	}
	return deck, nil
}

// generalContext prefers the caller's description, then the deck's own, then its leading text
func (p *Pipeline) generalContext(in Input, deck *model.Deck) string {
	if c := strings.TrimSpace(in.GeneralContext); c != "" {
		return c
	}
	if c := strings.TrimSpace(deck.GeneralContext); c != "" {
		return c
	}
	n := p.config.Pipeline.ContextChars
	if n <= 0 {
		n = 1000
	}
	return util.Truncate(deck.WholeText, n)
}

func (p *Pipeline) agentDeps(images agents.PageImager) agents.Deps {
	return agents.Deps{LLM: p.llm, Search: p.search, Images: images, Logger: p.logger}
}

func sourceName(in Input) string {
	if in.Deck != nil && in.Deck.Source != "" {
		return in.Deck.Source
	}
	return in.Path
}
