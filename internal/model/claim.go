package model

import "strings"

// Verdict is the adjudicated accuracy of one claim
type Verdict string

const (
	VerdictAccurate             Verdict = "accurate"
	VerdictInaccurate           Verdict = "inaccurate"
	VerdictPartiallyAccurate    Verdict = "partially_accurate"
	VerdictInsufficientEvidence Verdict = "insufficient_evidence"
)

// Confidence of a verdict or a credibility analysis
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseVerdict maps a model's verdict onto the closed set. Case, surrounding
// whitespace and space or hyphen separators are tolerated.
func ParseVerdict(raw string) (Verdict, bool) {
	switch v := Verdict(normalizeLabel(raw)); v {
	case VerdictAccurate, VerdictInaccurate, VerdictPartiallyAccurate, VerdictInsufficientEvidence:
		return v, true
	}
	return "", false
}

// ParseConfidence maps a model's confidence onto low, medium or high
func ParseConfidence(raw string) (Confidence, bool) {
	switch c := Confidence(normalizeLabel(raw)); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, true
	}
	return "", false
}

func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// ClaimType categorizes a competitor claim by its wording
type ClaimType string

const (
	ClaimTypeFactualBusinessData   ClaimType = "factual_business_data"
	ClaimTypeFeatureComparison     ClaimType = "feature_comparison"
	ClaimTypePerformanceComparison ClaimType = "performance_comparison"
	ClaimTypePositioning           ClaimType = "positioning_claim"
	ClaimTypeGeneral               ClaimType = "general_claim"
	ClaimTypeMarketPositioning     ClaimType = "market_positioning"
)

// MarketClaimCompetitor is the competitor label used for market-positioning claims
const MarketClaimCompetitor = "MARKET_CLAIM"

// ClaimVerification is the model's verdict on a single claim
type ClaimVerification struct {
	Claim                 string     `json:"claim,omitempty"`
	Verdict               Verdict    `json:"verdict"`
	Confidence            Confidence `json:"confidence,omitempty"`
	SupportingEvidence    string     `json:"supporting_evidence,omitempty"`
	ContradictingEvidence string     `json:"contradicting_evidence,omitempty"`
	AccuracyScore         float64    `json:"accuracy_score"`
	EvidenceQuality       string     `json:"evidence_quality,omitempty"` // strong, moderate, weak, none
}

// InsufficientEvidence is the placeholder verdict used when the model returns too few verdicts
func InsufficientEvidence(claim string) ClaimVerification {
	return ClaimVerification{
		Claim:   claim,
		Verdict: VerdictInsufficientEvidence,
	}
}

// VerifiedClaim binds a claim to its competitor, category and verdict
type VerifiedClaim struct {
	Competitor   string            `json:"competitor"`
	Claim        string            `json:"claim"`
	ClaimType    ClaimType         `json:"claim_type"`
	Verification ClaimVerification `json:"verification"`
}

// CompetitorClaims are the claims a deck makes about one competitor
type CompetitorClaims struct {
	CompetitorName    string   `json:"competitor_name"`
	FactualClaims     []string `json:"factual_claims"`
	FeatureClaims     []string `json:"feature_claims"`
	PerformanceClaims []string `json:"performance_claims"`
	PositioningClaims []string `json:"positioning_claims"`
}

// All returns every claim in category order: factual, feature, performance, positioning
func (c CompetitorClaims) All() []string {
	all := make([]string, 0, len(c.FactualClaims)+len(c.FeatureClaims)+len(c.PerformanceClaims)+len(c.PositioningClaims))
	all = append(all, c.FactualClaims...)
	all = append(all, c.FeatureClaims...)
	all = append(all, c.PerformanceClaims...)
	all = append(all, c.PositioningClaims...)
	return all
}

// CompetitionExtraction is the structured content of a competitors slide
type CompetitionExtraction struct {
	CompetitorClaims     []CompetitorClaims `json:"competitor_claims"`
	MarketPositionClaims []string           `json:"market_position_claims"`
}

// CredibilityLabel summarizes an accuracy distribution
type CredibilityLabel string

const (
	CredibilityHigh     CredibilityLabel = "high_credibility"
	CredibilityModerate CredibilityLabel = "moderate_credibility"
	CredibilityLow      CredibilityLabel = "low_credibility"
	CredibilityVeryLow  CredibilityLabel = "very_low_credibility"
	CredibilityUnknown  CredibilityLabel = "unknown"
)

// AccuracySummary aggregates verdicts over a set of verified claims
type AccuracySummary struct {
	TotalClaims                int              `json:"total_claims"`
	AccurateClaims             int              `json:"accurate_claims"`
	PartiallyAccurateClaims    int              `json:"partially_accurate_claims"`
	InaccurateClaims           int              `json:"inaccurate_claims"`
	InsufficientEvidenceClaims int              `json:"insufficient_evidence_claims"`
	AverageAccuracyScore       float64          `json:"average_accuracy_score"`
	CredibilityRating          CredibilityLabel `json:"credibility_rating"`
	Signals                    []Signal         `json:"signals,omitempty"`
}

// Signal is a transparent explanation of how a summary value was derived
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a signal
type SignalType string

const (
	SignalCredibility     SignalType = "credibility"      // Weighted accuracy percentage
	SignalInaccurateClaim SignalType = "inaccurate_claim" // Claim contradicted by evidence
	SignalThinEvidence    SignalType = "thin_evidence"    // Most claims lacked evidence
	SignalAuthority       SignalType = "authority_distribution"
	SignalAccessibility   SignalType = "accessibility"
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
