// Package agents holds the model-driven stages of a deck analysis: topic
// classification, the three verification agents and the feedback synthesizer.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/pitchcheck/internal/llm"
	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/metrics"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/search"
	"go.uber.org/zap"
)

// PageImager renders a 1-based page of the deck as JPEG
type PageImager interface {
	RenderPage(ctx context.Context, pageNumber int) ([]byte, error)
}

// Deps are the collaborators shared by every agent
type Deps struct {
	LLM    llm.Provider
	Search search.Searcher
	Images PageImager // Optional; without it extraction calls are text-only
	Logger *zap.Logger
}

// Target is the slide content an agent works on
type Target struct {
	PageNumber int    // Page whose image is sent to the model
	Pages      []int  // Every page the text was taken from
	Text       string // Page text, or several pages joined under the "all" policy
}

// Warnings collects non-fatal degradations of one stage
type Warnings []string

func (w *Warnings) Addf(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func (d Deps) log() *zap.Logger {
	return logger.OrNop(d.Logger)
}

// ask sends a text-only prompt
func (d Deps) ask(ctx context.Context, system, prompt string) (string, error) {
	resp, err := d.LLM.Complete(ctx, llm.Request{System: system, Prompt: prompt})
	if err != nil {
		return "", model.NewError(model.KindUpstream, "model call", err)
	}
	return resp.Text, nil
}

// askAboutPage sends prompt together with the rendered page and its text
func (d Deps) askAboutPage(ctx context.Context, target Target, prompt string) (string, error) {
	req := llm.Request{Prompt: pagePrompt(prompt, target.Text)}
	if d.Images != nil && target.PageNumber > 0 {
		img, err := d.Images.RenderPage(ctx, target.PageNumber)
		if err != nil {
			// The page text is still attached
			d.log().Warn("page render failed, sending text only",
				zap.Int("page", target.PageNumber), zap.Error(err))
		} else {
			req.Image = img
		}
	}
	resp, err := d.LLM.Complete(ctx, req)
	if err != nil {
		return "", model.NewError(model.KindUpstream, fmt.Sprintf("model call on page %d", target.PageNumber), err)
	}
	return resp.Text, nil
}

// find runs one search, wrapping failures as upstream errors
func (d Deps) find(ctx context.Context, query string, max int) (*search.Response, error) {
	resp, err := d.Search.Search(ctx, query, max)
	if err != nil {
		if model.IsKind(err, model.KindUpstream) {
			return nil, err
		}
		return nil, model.NewError(model.KindUpstream, "search", err)
	}
	return resp, nil
}

// decode parses a model reply and records the outcome under caller
func decode(caller, raw, schema string, v any) llm.Decoded {
	var d llm.Decoded
	if schema == "" {
		d = llm.DecodeJSON(raw, v)
	} else {
		d = llm.DecodeJSONSchema(raw, schema, v)
	}
	metrics.DecodeOutcomes.WithLabelValues(caller, d.Status.String()).Inc()
	return d
}

// collectURLs merges result URLs in order without repeats
func collectURLs(responses ...*search.Response) []string {
	seen := make(map[string]bool)
	urls := []string{}
	for _, r := range responses {
		for _, u := range r.URLs() {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
