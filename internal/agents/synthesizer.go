package agents

import (
	"context"
	"time"

	"github.com/ppiankov/pitchcheck/internal/model"
	"go.uber.org/zap"
)

// SynthesisInput is one analyzed slide with the narrative written about it
type SynthesisInput struct {
	Topic     model.Topic
	Page      model.Page
	Narrative string
}

// Synthesizer anchors agent narratives to text blocks on the slides
type Synthesizer struct {
	deps Deps
}

func NewSynthesizer(deps Deps) *Synthesizer {
	return &Synthesizer{deps: deps}
}

// Run makes one model call mapping findings onto slide coordinates. It returns
// nil without calling the model when there is nothing to map. Items with an
// unknown status or page are dropped; boxes outside the canvas are clamped.
func (s *Synthesizer) Run(ctx context.Context, inputs []SynthesisInput) ([]model.FeedbackItem, Warnings, error) {
	pages := make([]synthesisPage, 0, len(inputs))
	known := make(map[int]model.Topic, len(inputs))
	for _, in := range inputs {
		if in.Narrative == "" {
			continue
		}
		pages = append(pages, synthesisPage{
			PageNumber: in.Page.Number,
			SlideType:  in.Topic,
			Feedback:   in.Narrative,
			Blocks:     in.Page.Blocks,
		})
		known[in.Page.Number] = in.Topic
	}
	if len(pages) == 0 {
		return nil, nil, nil
	}

	start := time.Now()
	log := s.deps.log().With(zap.String("stage", "synthesis"))

	raw, err := s.deps.ask(ctx, synthesizeSystem, synthesizePrompt(pages))
	if err != nil {
		return nil, nil, err
	}

	var warnings Warnings
	var items []model.FeedbackItem
	if d := decode("synthesizer", raw, feedbackItemsSchema, &items); !d.OK() {
		log.Warn("matched feedback not decodable", zap.Error(d.Err))
		warnings.Addf("matched feedback could not be read: %v", d.Err)
		return []model.FeedbackItem{}, warnings, nil
	}

	kept := make([]model.FeedbackItem, 0, len(items))
	for i, item := range items {
		if !item.Status.Valid() {
			warnings.Addf("matched feedback item %d dropped: status %q", i+1, item.Status)
			continue
		}
		topic, ok := known[item.PageNumber]
		if !ok {
			warnings.Addf("matched feedback item %d dropped: page %d was not analyzed", i+1, item.PageNumber)
			continue
		}
		if item.SlideType == "" {
			item.SlideType = string(topic)
		}
		if !item.Coordinates.WithinCanvas() {
			warnings.Addf("matched feedback item %d: coordinates clamped to the canvas", i+1)
			item.Coordinates = normalizeOrder(item.Coordinates.ClampToCanvas())
		}
		kept = append(kept, item)
	}

	log.Info("feedback matched",
		zap.Int("items", len(kept)),
		zap.Int("dropped", len(items)-len(kept)),
		zap.Duration("duration", time.Since(start)))
	return kept, warnings, nil
}

// normalizeOrder swaps corners so X0<=X1 and Y0<=Y1
func normalizeOrder(b model.Box) model.Box {
	if b.X0 > b.X1 {
		b.X0, b.X1 = b.X1, b.X0
	}
	if b.Y0 > b.Y1 {
		b.Y0, b.Y1 = b.Y1, b.Y0
	}
	return b
}
