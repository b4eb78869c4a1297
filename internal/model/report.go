package model

import "time"

// FeedbackStatus labels a coordinate-anchored feedback item
type FeedbackStatus string

const (
	StatusRefuted FeedbackStatus = "refuted" // Clearly disproven or contradicted
	StatusUnclear FeedbackStatus = "unclear" // Could not be verified or is ambiguous
)

// Valid reports whether s is a known status
func (s FeedbackStatus) Valid() bool {
	return s == StatusRefuted || s == StatusUnclear
}

// FeedbackItem is a verdict narrative bound to a box on a slide
type FeedbackItem struct {
	Feedback    string         `json:"feedback"`
	Coordinates Box            `json:"coordinates"`
	PageNumber  int            `json:"page_number"`
	SlideType   string         `json:"slide_type"`
	Status      FeedbackStatus `json:"status"`
}

// MarketFeedback is the market-size stage output
type MarketFeedback struct {
	PageNumber int      `json:"page_number"`
	Extracted  string   `json:"extracted,omitempty"` // TAM/SAM narrative read from the slide
	Info       string   `json:"tam_sam_info"`
	Sources    []string `json:"tam_sam_sources"`
}

// TeamFeedback is the founder-background stage output
type TeamFeedback struct {
	PageNumber       int               `json:"page_number"`
	VerifiedFounders []VerifiedFounder `json:"verified_founders"`
	TotalFounders    int               `json:"total_founders"`
	WrittenFeedback  string            `json:"written_feedback"`
}

// CompetitionFeedback is the competitor-claim stage output
type CompetitionFeedback struct {
	PageNumber       int                   `json:"page_number"`
	CompetitorClaims CompetitionExtraction `json:"competitor_claims"`
	VerifiedClaims   []VerifiedClaim       `json:"verified_claims"`
	AccuracySummary  AccuracySummary       `json:"accuracy_summary"`
	WrittenFeedback  string                `json:"written_feedback"`
	VerificationMode string                `json:"verification_mode"`
	Sources          []string              `json:"sources,omitempty"`
}

// Analysis is the merged result of every pipeline stage
type Analysis struct {
	Source          string               `json:"source,omitempty"`
	AnalyzedAt      time.Time            `json:"analyzed_at"`
	GeneralContext  string               `json:"general_context"`
	Topics          []TopicAssignment    `json:"topics"`
	TotalPages      int                  `json:"total_pages"`
	Plan            []string             `json:"plan"`
	Market          *MarketFeedback      `json:"market,omitempty"`
	Team            *TeamFeedback        `json:"team,omitempty"`
	Competition     *CompetitionFeedback `json:"competition,omitempty"`
	MatchedFeedback []FeedbackItem       `json:"matched_feedback"`
	Sources         []ValidationResult   `json:"sources,omitempty"`
	SourceSignals   []Signal             `json:"source_signals,omitempty"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// TamSamInfo returns the market narrative, empty when no market slide was analyzed
func (a *Analysis) TamSamInfo() string {
	if a.Market == nil {
		return ""
	}
	return a.Market.Info
}

// TamSamSources returns the market sources, never nil
func (a *Analysis) TamSamSources() []string {
	if a.Market == nil || a.Market.Sources == nil {
		return []string{}
	}
	return a.Market.Sources
}
