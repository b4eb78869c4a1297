package agents

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/util"
	"go.uber.org/zap"
)

const (
	marketQueryChars  = 200
	marketQuerySuffix = " industry statistics"
	marketMaxResults  = 3
)

// MarketAgent fact-checks the TAM/SAM figures of a market size slide
type MarketAgent struct {
	deps Deps
}

func NewMarketAgent(deps Deps) *MarketAgent {
	return &MarketAgent{deps: deps}
}

// MarketQuery is the search query for a market slide: its leading text plus a statistics hint
func MarketQuery(pageText string) string {
	return util.Truncate(strings.TrimSpace(pageText), marketQueryChars) + marketQuerySuffix
}

// Run extracts the slide's figures, searches for industry statistics and asks for
// a binary verdict. An empty search result still yields a narrative.
func (m *MarketAgent) Run(ctx context.Context, target Target, generalContext string) (*model.MarketFeedback, error) {
	start := time.Now()
	log := m.deps.log().With(zap.String("stage", "market"), zap.Int("page", target.PageNumber))
	log.Info("market analysis started")

	extracted, err := m.deps.askAboutPage(ctx, target, marketExtractPrompt)
	if err != nil {
		return nil, err
	}

	results, err := m.deps.find(ctx, MarketQuery(target.Text), marketMaxResults)
	if err != nil {
		return nil, err
	}
	if len(results.Hits()) == 0 {
		log.Warn("no market evidence found, model will rely on its own estimate")
	}

	info, err := m.deps.ask(ctx, "", marketJudgePrompt(extracted, results.Hits(), generalContext))
	if err != nil {
		return nil, err
	}

	log.Info("market analysis finished",
		zap.Int("sources", len(results.URLs())),
		zap.Duration("duration", time.Since(start)))

	return &model.MarketFeedback{
		PageNumber: target.PageNumber,
		Extracted:  extracted,
		Info:       info,
		Sources:    collectURLs(results),
	}, nil
}
