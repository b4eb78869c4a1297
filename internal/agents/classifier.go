package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/llm"
	"github.com/ppiankov/pitchcheck/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Classifier tags every page of a deck with one topic
type Classifier struct {
	deps    Deps
	workers int
	retries int
}

// NewClassifier creates a classifier running at most workers calls at once and
// re-asking up to retries times when a reply is not a known tag
func NewClassifier(deps Deps, workers, retries int) *Classifier {
	if workers <= 0 {
		workers = 4
	}
	if retries < 0 {
		retries = 0
	}
	return &Classifier{deps: deps, workers: workers, retries: retries}
}

// Classify returns one assignment per page, in page order. Pages whose replies
// never match the vocabulary are tagged "other" and reported as warnings.
func (c *Classifier) Classify(ctx context.Context, pages []model.Page) ([]model.TopicAssignment, Warnings, error) {
	start := time.Now()
	assignments := make([]model.TopicAssignment, len(pages))
	fallbacks := make([]string, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, page := range pages {
		g.Go(func() error {
			a, raw, err := c.classifyPage(gctx, page)
			if err != nil {
				return err
			}
			assignments[i] = a
			fallbacks[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings Warnings
	for i, raw := range fallbacks {
		if raw != "" {
			warnings.Addf("page %d: unrecognized topic %q after %d attempts, tagged %s",
				pages[i].Number, oneLine(raw, 60), assignments[i].Attempts, model.TopicOther)
		}
	}

	c.deps.log().Info("pages classified",
		zap.Int("pages", len(pages)),
		zap.Int("fallbacks", len(warnings)),
		zap.Duration("duration", time.Since(start)))
	return assignments, warnings, nil
}

// classifyPage returns the assignment and, when it fell back to "other", the last raw reply
func (c *Classifier) classifyPage(ctx context.Context, page model.Page) (model.TopicAssignment, string, error) {
	a := model.TopicAssignment{PageNumber: page.Number, PageText: page.Text}

	prompt := classifyPrompt(page.Number, page.Text)
	var reply string
	for attempt := 0; attempt <= c.retries; attempt++ {
		text, err := c.deps.ask(ctx, classifySystem, prompt)
		if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
			return a, "", err
		}
		a.Attempts++
		reply = text

		if topic, err := model.ParseTopic(SanitizeTopic(text)); err == nil {
			a.Topic = topic
			return a, "", nil
		}
		c.deps.log().Debug("topic reply out of vocabulary",
			zap.Int("page", page.Number),
			zap.String("reply", oneLine(text, 80)))
		prompt = reclassifyPrompt(page.Number, page.Text, text)
	}

	a.Topic = model.TopicOther
	if reply == "" {
		reply = "(empty)"
	}
	return a, reply, nil
}

// SanitizeTopic normalizes a raw classifier reply before validation: it trims,
// lower-cases and strips quotes, backticks and trailing punctuation
func SanitizeTopic(reply string) string {
	s := strings.ToLower(reply)
	for {
		trimmed := strings.Trim(s, "`\"' \t\r\n")
		trimmed = strings.TrimRight(trimmed, ".,;:!?")
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
