package agents

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/model"
	"go.uber.org/zap"
)

const (
	linkedInMaxResults = 2
	startupMaxResults  = 1
	noNameProvided     = "No name provided"
)

// LinkedInQuery searches for a founder's professional profile
func LinkedInQuery(name string) string {
	return name + " LinkedIn profile, past jobs, education, skills, interests"
}

// StartupQuery searches for a founder's entrepreneurial track record
func StartupQuery(name string) string {
	return name + " startup founder CEO CTO entrepreneur"
}

// FoundersAgent checks the backgrounds claimed on a team slide
type FoundersAgent struct {
	deps Deps
}

func NewFoundersAgent(deps Deps) *FoundersAgent {
	return &FoundersAgent{deps: deps}
}

type foundersReply struct {
	Founders []model.Founder `json:"founders"`
}

// Run extracts the founders, searches each by name, asks for a credibility
// analysis per founder and writes a short team narrative
func (f *FoundersAgent) Run(ctx context.Context, target Target, generalContext string) (*model.TeamFeedback, Warnings, error) {
	start := time.Now()
	log := f.deps.log().With(zap.String("stage", "founders"), zap.Int("page", target.PageNumber))
	log.Info("founder verification started")

	var warnings Warnings

	raw, err := f.deps.askAboutPage(ctx, target, founderExtractPrompt)
	if err != nil {
		return nil, nil, err
	}
	var extracted foundersReply
	if d := decode("founders_extract", raw, foundersSchema, &extracted); !d.OK() {
		log.Warn("founder extraction not decodable", zap.Error(d.Err))
		warnings.Addf("team slide (page %d): founder list could not be read: %v", target.PageNumber, d.Err)
		extracted.Founders = nil
	}

	verified := make([]model.VerifiedFounder, 0, len(extracted.Founders))
	for _, founder := range extracted.Founders {
		founder.Name = strings.TrimSpace(founder.Name)

		found, err := f.searchFounder(ctx, founder.Name)
		if err != nil {
			return nil, nil, err
		}

		vf := model.VerifiedFounder{Founder: founder, InternetVerification: found}

		reply, err := f.deps.ask(ctx, "", credibilityPrompt(founder, found))
		if err != nil {
			return nil, nil, err
		}
		var analysis model.CredibilityAnalysis
		if d := decode("founders_credibility", reply, credibilitySchema, &analysis); d.OK() {
			vf.CredibilityAnalysis = analysis
			vf.AnalysisParsed = true
		} else {
			log.Warn("credibility analysis not decodable",
				zap.String("founder", founder.Name), zap.Error(d.Err))
			warnings.Addf("founder %q: credibility analysis could not be read", displayName(founder.Name))
			vf.CredibilityAnalysis = model.UnparsedCredibility()
		}

		verified = append(verified, vf)
	}

	written, err := f.deps.ask(ctx, "", teamFeedbackPrompt(verified, generalContext))
	if err != nil {
		return nil, nil, err
	}

	log.Info("founder verification finished",
		zap.Int("founders", len(verified)),
		zap.Duration("duration", time.Since(start)))

	return &model.TeamFeedback{
		PageNumber:       target.PageNumber,
		VerifiedFounders: verified,
		TotalFounders:    len(verified),
		WrittenFeedback:  written,
	}, warnings, nil
}

// searchFounder runs the profile and track-record searches. Nameless founders are not searched.
func (f *FoundersAgent) searchFounder(ctx context.Context, name string) (model.FounderSearch, error) {
	if name == "" {
		return model.FounderSearch{
			LinkedInSearch: []model.SearchHit{},
			StartupSearch:  []model.SearchHit{},
			Error:          noNameProvided,
		}, nil
	}

	linkedIn, err := f.deps.find(ctx, LinkedInQuery(name), linkedInMaxResults)
	if err != nil {
		return model.FounderSearch{}, err
	}
	startup, err := f.deps.find(ctx, StartupQuery(name), startupMaxResults)
	if err != nil {
		return model.FounderSearch{}, err
	}

	return model.FounderSearch{
		LinkedInSearch: linkedIn.Hits(),
		StartupSearch:  startup.Hits(),
		SearchSuccess:  len(linkedIn.Hits()) > 0 || len(startup.Hits()) > 0,
	}, nil
}

func displayName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return name
}
