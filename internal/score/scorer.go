package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// Scorer summarizes claim verdicts and source quality into labelled signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Summarize counts verdicts, averages accuracy scores and rates credibility.
// A verdict outside the known set counts as insufficient evidence.
func (s *Scorer) Summarize(verified []model.VerifiedClaim) model.AccuracySummary {
	if len(verified) == 0 {
		return model.AccuracySummary{CredibilityRating: model.CredibilityUnknown}
	}

	summary := model.AccuracySummary{TotalClaims: len(verified)}
	var totalScore float64

	for _, vc := range verified {
		totalScore += vc.Verification.AccuracyScore
		switch vc.Verification.Verdict {
		case model.VerdictAccurate:
			summary.AccurateClaims++
		case model.VerdictPartiallyAccurate:
			summary.PartiallyAccurateClaims++
		case model.VerdictInaccurate:
			summary.InaccurateClaims++
		default:
			summary.InsufficientEvidenceClaims++
		}
	}

	summary.AverageAccuracyScore = math.Round(totalScore/float64(summary.TotalClaims)*10) / 10
	summary.CredibilityRating = CredibilityRating(
		summary.AccurateClaims, summary.PartiallyAccurateClaims, summary.InaccurateClaims, summary.TotalClaims)

	summary.Signals = append(summary.Signals, s.credibilitySignal(summary))
	summary.Signals = append(summary.Signals, s.inaccurateClaimSignals(verified)...)
	if sig, ok := s.thinEvidenceSignal(summary); ok {
		summary.Signals = append(summary.Signals, sig)
	}

	return summary
}

// CredibilityRating buckets (accurate + 0.5*partial) / total as a percentage:
// >=80 high, >=60 moderate, >=40 low, else very low. Inaccurate claims lower
// the rate only through total. total 0 is unknown.
func CredibilityRating(accurate, partial, inaccurate, total int) model.CredibilityLabel {
	if total == 0 {
		return model.CredibilityUnknown
	}

	pct := accuracyPercentage(accurate, partial, total)
	switch {
	case pct >= 80:
		return model.CredibilityHigh
	case pct >= 60:
		return model.CredibilityModerate
	case pct >= 40:
		return model.CredibilityLow
	default:
		return model.CredibilityVeryLow
	}
}

func accuracyPercentage(accurate, partial, total int) float64 {
	return (float64(accurate) + 0.5*float64(partial)) / float64(total) * 100
}

func (s *Scorer) credibilitySignal(summary model.AccuracySummary) model.Signal {
	pct := accuracyPercentage(summary.AccurateClaims, summary.PartiallyAccurateClaims, summary.TotalClaims)

	severity := model.SeverityInfo
	switch summary.CredibilityRating {
	case model.CredibilityLow:
		severity = model.SeverityWarning
	case model.CredibilityVeryLow:
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalCredibility,
		Severity:    severity,
		Description: fmt.Sprintf("Weighted accuracy %.1f%% over %d claims", pct, summary.TotalClaims),
		Data: map[string]interface{}{
			"accurate":   summary.AccurateClaims,
			"partial":    summary.PartiallyAccurateClaims,
			"inaccurate": summary.InaccurateClaims,
			"total":      summary.TotalClaims,
			"percentage": pct,
			"rating":     string(summary.CredibilityRating),
			"formula":    "(accurate + 0.5*partial) / total * 100",
		},
	}
}

func (s *Scorer) inaccurateClaimSignals(verified []model.VerifiedClaim) []model.Signal {
	var signals []model.Signal
	for _, vc := range verified {
		if vc.Verification.Verdict != model.VerdictInaccurate {
			continue
		}

		severity := model.SeverityWarning
		if vc.Verification.Confidence == model.ConfidenceHigh {
			severity = model.SeverityCritical
		}

		signals = append(signals, model.Signal{
			Type:        model.SignalInaccurateClaim,
			Severity:    severity,
			Description: fmt.Sprintf("%s: %q contradicted by evidence", vc.Competitor, vc.Claim),
			Data: map[string]interface{}{
				"competitor":             vc.Competitor,
				"claim_type":             string(vc.ClaimType),
				"confidence":             string(vc.Verification.Confidence),
				"contradicting_evidence": vc.Verification.ContradictingEvidence,
			},
		})
	}
	return signals
}

// thinEvidenceSignal fires when at least half of the claims could not be checked
func (s *Scorer) thinEvidenceSignal(summary model.AccuracySummary) (model.Signal, bool) {
	ratio := float64(summary.InsufficientEvidenceClaims) / float64(summary.TotalClaims)
	if ratio < 0.5 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalThinEvidence,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d of %d claims lacked evidence", summary.InsufficientEvidenceClaims, summary.TotalClaims),
		Data: map[string]interface{}{
			"insufficient": summary.InsufficientEvidenceClaims,
			"total":        summary.TotalClaims,
			"ratio":        ratio,
		},
	}, true
}

// SourceSignals describes the authority mix and reachability of the collected sources
func (s *Scorer) SourceSignals(results []model.ValidationResult) []model.Signal {
	if len(results) == 0 {
		return nil
	}

	var primary, secondary, tertiary, checked, dead int
	for _, r := range results {
		switch r.Authority {
		case model.TierPrimary:
			primary++
		case model.TierSecondary:
			secondary++
		default:
			tertiary++
		}
		if r.Checked {
			checked++
			if r.IsDead {
				dead++
			}
		}
	}

	total := len(results)
	weighted := float64(primary*3+secondary*2+tertiary) / float64(total*3) * 100

	authority := model.Signal{
		Type:        model.SignalAuthority,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Sources: %d primary, %d secondary, %d tertiary", primary, secondary, tertiary),
		Data: map[string]interface{}{
			"primary":   primary,
			"secondary": secondary,
			"tertiary":  tertiary,
			"total":     total,
			"weighted":  math.Round(weighted*10) / 10,
			"formula":   "(primary*3 + secondary*2 + tertiary*1) / (total*3) * 100",
		},
	}
	if primary == 0 {
		authority.Severity = model.SeverityWarning
	}
	signals := []model.Signal{authority}

	if checked > 0 {
		deadRatio := float64(dead) / float64(checked)
		severity := model.SeverityInfo
		if deadRatio > 0.5 {
			severity = model.SeverityCritical
		} else if dead > 0 {
			severity = model.SeverityWarning
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalAccessibility,
			Severity:    severity,
			Description: fmt.Sprintf("%d of %d checked sources unreachable", dead, checked),
			Data: map[string]interface{}{
				"checked": checked,
				"dead":    dead,
				"ratio":   deadRatio,
			},
		})
	}

	return signals
}
