package score

import (
	"testing"

	"github.com/ppiankov/pitchcheck/internal/model"
)

func verified(verdict model.Verdict, score float64) model.VerifiedClaim {
	return model.VerifiedClaim{
		Competitor: "Acme",
		Claim:      "claim",
		ClaimType:  model.ClaimTypeGeneral,
		Verification: model.ClaimVerification{
			Verdict:       verdict,
			AccuracyScore: score,
		},
	}
}

func TestCredibilityRating(t *testing.T) {
	tests := []struct {
		name                            string
		accurate, partial, inacc, total int
		want                            model.CredibilityLabel
	}{
		{"empty", 0, 0, 0, 0, model.CredibilityUnknown},
		{"all accurate", 5, 0, 0, 5, model.CredibilityHigh},
		{"exactly 80", 4, 0, 1, 5, model.CredibilityHigh},
		{"partials count half", 2, 2, 1, 5, model.CredibilityModerate}, // 60%
		{"exactly 40", 1, 2, 2, 5, model.CredibilityLow},
		{"below 40", 1, 1, 3, 5, model.CredibilityVeryLow}, // 30%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CredibilityRating(tt.accurate, tt.partial, tt.inacc, tt.total); got != tt.want {
				t.Errorf("CredibilityRating = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScorer_Summarize(t *testing.T) {
	claims := []model.VerifiedClaim{
		verified(model.VerdictAccurate, 90),
		verified(model.VerdictPartiallyAccurate, 60),
		verified(model.VerdictInaccurate, 10),
		verified(model.VerdictInsufficientEvidence, 0),
		verified("probably_true", 33), // unknown verdicts count as insufficient
	}

	s := NewScorer().Summarize(claims)

	if s.TotalClaims != 5 {
		t.Errorf("expected 5 claims, got %d", s.TotalClaims)
	}
	if s.AccurateClaims != 1 || s.PartiallyAccurateClaims != 1 || s.InaccurateClaims != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.InsufficientEvidenceClaims != 2 {
		t.Errorf("expected 2 insufficient (one unknown verdict), got %d", s.InsufficientEvidenceClaims)
	}
	// (90+60+10+0+33)/5 = 38.6
	if s.AverageAccuracyScore != 38.6 {
		t.Errorf("expected average 38.6, got %v", s.AverageAccuracyScore)
	}
	// (1 + 0.5)/5 = 30%
	if s.CredibilityRating != model.CredibilityVeryLow {
		t.Errorf("expected very low credibility, got %s", s.CredibilityRating)
	}

	var sawCredibility, sawInaccurate bool
	for _, sig := range s.Signals {
		switch sig.Type {
		case model.SignalCredibility:
			sawCredibility = true
			if sig.Severity != model.SeverityCritical {
				t.Errorf("very low credibility should be critical, got %s", sig.Severity)
			}
		case model.SignalInaccurateClaim:
			sawInaccurate = true
		}
	}
	if !sawCredibility || !sawInaccurate {
		t.Errorf("missing signals: %+v", s.Signals)
	}
}

func TestScorer_Summarize_Rounding(t *testing.T) {
	s := NewScorer().Summarize([]model.VerifiedClaim{
		verified(model.VerdictAccurate, 70),
		verified(model.VerdictAccurate, 80),
		verified(model.VerdictAccurate, 81),
	})
	// 231/3 = 77.0
	if s.AverageAccuracyScore != 77 {
		t.Errorf("expected 77, got %v", s.AverageAccuracyScore)
	}

	s = NewScorer().Summarize([]model.VerifiedClaim{
		verified(model.VerdictAccurate, 100),
		verified(model.VerdictAccurate, 0),
		verified(model.VerdictAccurate, 0),
	})
	// 33.333 -> 33.3
	if s.AverageAccuracyScore != 33.3 {
		t.Errorf("expected 33.3, got %v", s.AverageAccuracyScore)
	}
}

func TestScorer_Summarize_Empty(t *testing.T) {
	s := NewScorer().Summarize(nil)
	if s.TotalClaims != 0 || s.AverageAccuracyScore != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if s.CredibilityRating != model.CredibilityUnknown {
		t.Errorf("expected unknown rating, got %s", s.CredibilityRating)
	}
	if len(s.Signals) != 0 {
		t.Errorf("expected no signals, got %d", len(s.Signals))
	}
}

func TestScorer_ThinEvidence(t *testing.T) {
	s := NewScorer().Summarize([]model.VerifiedClaim{
		verified(model.VerdictInsufficientEvidence, 0),
		verified(model.VerdictAccurate, 80),
	})

	found := false
	for _, sig := range s.Signals {
		if sig.Type == model.SignalThinEvidence {
			found = true
		}
	}
	if !found {
		t.Error("expected thin evidence signal at half insufficient")
	}
}

func TestScorer_SourceSignals(t *testing.T) {
	scorer := NewScorer()

	if sigs := scorer.SourceSignals(nil); sigs != nil {
		t.Errorf("expected no signals for no sources, got %v", sigs)
	}

	sigs := scorer.SourceSignals([]model.ValidationResult{
		{URL: "https://sec.gov/a", Authority: model.TierPrimary, Checked: true, IsAccessible: true},
		{URL: "https://blog.example/b", Authority: model.TierTertiary, Checked: true, IsDead: true},
		{URL: "https://crunchbase.com/c", Authority: model.TierSecondary},
	})

	if len(sigs) != 2 {
		t.Fatalf("expected authority and accessibility signals, got %d", len(sigs))
	}
	if sigs[0].Type != model.SignalAuthority || sigs[0].Severity != model.SeverityInfo {
		t.Errorf("unexpected authority signal: %+v", sigs[0])
	}
	if sigs[0].Data["weighted"] != 66.7 {
		t.Errorf("expected weighted 66.7, got %v", sigs[0].Data["weighted"])
	}
	if sigs[1].Type != model.SignalAccessibility || sigs[1].Severity != model.SeverityWarning {
		t.Errorf("unexpected accessibility signal: %+v", sigs[1])
	}
}
