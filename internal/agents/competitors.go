package agents

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/extract"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/score"
	"github.com/ppiankov/pitchcheck/internal/search"
	"go.uber.org/zap"
)

// VerificationMode labels competitor output: claims are fact-checked one by one
const VerificationMode = "claim_fact_checking"

const (
	companyMaxResults    = 3
	comparisonMaxResults = 2
	marketClaimsResults  = 3

	evidenceCompany    = "GENERAL COMPANY INFO"
	evidenceComparison = "PERFORMANCE/COMPARISON INFO"
	evidenceMarket     = "SEARCH RESULTS"
)

// CompanyQuery searches for a competitor's business basics
func CompanyQuery(name string) string {
	return `"` + name + `" company business model features users funding`
}

// ComparisonQuery searches for pricing and benchmark comparisons of a competitor
func ComparisonQuery(name string) string {
	return `"` + name + `" pricing performance reviews comparison`
}

// MarketClaimsQuery searches for data behind market-positioning claims
func MarketClaimsQuery(claims []string) string {
	return strings.Join(claims, " ") + " market research statistics data"
}

// CompetitorsAgent fact-checks what a deck says about its competitors
type CompetitorsAgent struct {
	deps   Deps
	scorer *score.Scorer
}

func NewCompetitorsAgent(deps Deps) *CompetitorsAgent {
	return &CompetitorsAgent{deps: deps, scorer: score.NewScorer()}
}

type verificationsReply struct {
	ClaimVerifications []model.ClaimVerification `json:"claim_verifications"`
}

// Run extracts competitor claims, verifies them per competitor with one
// adjudication call each, verifies market-positioning claims together and
// writes a narrative on the deck's competitive analysis
func (c *CompetitorsAgent) Run(ctx context.Context, target Target, generalContext string) (*model.CompetitionFeedback, Warnings, error) {
	start := time.Now()
	log := c.deps.log().With(zap.String("stage", "competitors"), zap.Int("page", target.PageNumber))
	log.Info("competitor claim verification started")

	var warnings Warnings

	raw, err := c.deps.askAboutPage(ctx, target, competitorExtractPrompt)
	if err != nil {
		return nil, nil, err
	}
	var claims model.CompetitionExtraction
	if d := decode("competitors_extract", raw, competitionSchema, &claims); !d.OK() {
		log.Warn("competitor extraction not decodable", zap.Error(d.Err))
		warnings.Addf("competitors slide (page %d): claims could not be read: %v", target.PageNumber, d.Err)
		claims = model.CompetitionExtraction{}
	}
	if claims.CompetitorClaims == nil {
		claims.CompetitorClaims = []model.CompetitorClaims{}
	}
	claims.MarketPositionClaims = extract.CleanClaims(claims.MarketPositionClaims)

	var (
		verified  = []model.VerifiedClaim{}
		responses []*search.Response
	)

	for _, competitor := range claims.CompetitorClaims {
		all := extract.CleanClaims(competitor.All())
		if len(all) == 0 {
			continue
		}
		log.Debug("verifying competitor", zap.String("competitor", competitor.CompetitorName), zap.Int("claims", len(all)))

		verdicts, found, w, err := c.verifyCompetitor(ctx, competitor.CompetitorName, all)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
		responses = append(responses, found...)

		for i, claim := range all {
			verified = append(verified, model.VerifiedClaim{
				Competitor:   competitor.CompetitorName,
				Claim:        claim,
				ClaimType:    extract.CategorizeClaim(claim).Type,
				Verification: verdicts[i],
			})
		}
	}

	if market := claims.MarketPositionClaims; len(market) > 0 {
		results, err := c.deps.find(ctx, MarketClaimsQuery(market), marketClaimsResults)
		if err != nil {
			return nil, nil, err
		}
		responses = append(responses, results)

		evidence := map[string][]model.SearchHit{evidenceMarket: results.Hits()}
		verdicts, w, err := c.adjudicate(ctx, "the market", market, evidence, []string{evidenceMarket})
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)

		for i, claim := range market {
			verified = append(verified, model.VerifiedClaim{
				Competitor:   model.MarketClaimCompetitor,
				Claim:        claim,
				ClaimType:    model.ClaimTypeMarketPositioning,
				Verification: verdicts[i],
			})
		}
	}

	summary := c.scorer.Summarize(verified)

	written, err := c.deps.ask(ctx, "", competitionFeedbackPrompt(verified, summary, generalContext))
	if err != nil {
		return nil, nil, err
	}

	log.Info("competitor claim verification finished",
		zap.Int("claims", len(verified)),
		zap.String("credibility", string(summary.CredibilityRating)),
		zap.Duration("duration", time.Since(start)))

	return &model.CompetitionFeedback{
		PageNumber:       target.PageNumber,
		CompetitorClaims: claims,
		VerifiedClaims:   verified,
		AccuracySummary:  summary,
		WrittenFeedback:  written,
		VerificationMode: VerificationMode,
		Sources:          collectURLs(responses...),
	}, warnings, nil
}

// verifyCompetitor runs the company search, the comparison search when a claim
// compares speed, quality or price, and one adjudication call for all claims
func (c *CompetitorsAgent) verifyCompetitor(ctx context.Context, name string, claims []string) ([]model.ClaimVerification, []*search.Response, Warnings, error) {
	company, err := c.deps.find(ctx, CompanyQuery(name), companyMaxResults)
	if err != nil {
		return nil, nil, nil, err
	}
	found := []*search.Response{company}

	evidence := map[string][]model.SearchHit{
		evidenceCompany:    company.Hits(),
		evidenceComparison: {},
	}
	if extract.NeedsComparisonSearch(claims) {
		comparison, err := c.deps.find(ctx, ComparisonQuery(name), comparisonMaxResults)
		if err != nil {
			return nil, nil, nil, err
		}
		found = append(found, comparison)
		evidence[evidenceComparison] = comparison.Hits()
	}

	verdicts, warnings, err := c.adjudicate(ctx, name, claims, evidence, []string{evidenceCompany, evidenceComparison})
	if err != nil {
		return nil, nil, nil, err
	}
	return verdicts, found, warnings, nil
}

// adjudicate makes one model call for all claims and aligns its verdicts to them
func (c *CompetitorsAgent) adjudicate(ctx context.Context, subject string, claims []string, evidence map[string][]model.SearchHit, order []string) ([]model.ClaimVerification, Warnings, error) {
	var warnings Warnings

	raw, err := c.deps.ask(ctx, "", verifyClaimsPrompt(subject, claims, evidence, order))
	if err != nil {
		return nil, nil, err
	}

	var reply verificationsReply
	if d := decode("competitors_verify", raw, verificationsSchema, &reply); !d.OK() {
		c.deps.log().Warn("claim verifications not decodable", zap.String("subject", subject), zap.Error(d.Err))
		warnings.Addf("claims about %s could not be adjudicated, marked insufficient_evidence", subject)
		reply.ClaimVerifications = nil
	} else if n := len(reply.ClaimVerifications); n != len(claims) {
		warnings.Addf("claims about %s: %d verdicts for %d claims", subject, n, len(claims))
	}

	verdicts, corrections := AlignVerifications(claims, reply.ClaimVerifications)
	return verdicts, append(warnings, corrections...), nil
}

// AlignVerifications pairs verdicts with claims by position. Missing verdicts
// become insufficient_evidence and surplus verdicts are dropped. Verdicts and
// confidences outside the closed sets, and scores outside [0,100], are
// corrected with a warning each.
func AlignVerifications(claims []string, got []model.ClaimVerification) ([]model.ClaimVerification, Warnings) {
	var warnings Warnings
	out := make([]model.ClaimVerification, len(claims))
	for i, claim := range claims {
		if i >= len(got) {
			out[i] = model.InsufficientEvidence(claim)
			continue
		}
		v := got[i]
		if v.Claim == "" {
			v.Claim = claim
		}

		if verdict, ok := model.ParseVerdict(string(v.Verdict)); ok {
			v.Verdict = verdict
		} else {
			if v.Verdict != "" {
				warnings.Addf("claim %q: unknown verdict %q, marked insufficient_evidence", claim, v.Verdict)
			}
			v.Verdict = model.VerdictInsufficientEvidence
		}

		if v.Confidence != "" {
			if confidence, ok := model.ParseConfidence(string(v.Confidence)); ok {
				v.Confidence = confidence
			} else {
				warnings.Addf("claim %q: unknown confidence %q dropped", claim, v.Confidence)
				v.Confidence = ""
			}
		}

		switch {
		case v.AccuracyScore < 0:
			warnings.Addf("claim %q: accuracy score %g clamped to 0", claim, v.AccuracyScore)
			v.AccuracyScore = 0
		case v.AccuracyScore > 100:
			warnings.Addf("claim %q: accuracy score %g clamped to 100", claim, v.AccuracyScore)
			v.AccuracyScore = 100
		}
		out[i] = v
	}
	return out, warnings
}
