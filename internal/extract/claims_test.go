package extract

import (
	"testing"

	"github.com/ppiankov/pitchcheck/internal/model"
)

func TestCategorizeClaim(t *testing.T) {
	tests := []struct {
		claim     string
		want      model.ClaimType
		heuristic string
	}{
		{"Acme has 2M users", model.ClaimTypeFactualBusinessData, "keyword:users"},
		{"Raised $40M in FUNDING", model.ClaimTypeFactualBusinessData, "keyword:funding"},
		{"No offline capability", model.ClaimTypeFeatureComparison, "keyword:capability"},
		{"Twice as expensive as us", model.ClaimTypePerformanceComparison, "keyword:expensive"},
		{"We are 3x faster", model.ClaimTypePerformanceComparison, "keyword:faster"},
		{"Unlike Acme, we integrate natively", model.ClaimTypePositioning, "keyword:unlike"},
		{"Acme is a legacy vendor", model.ClaimTypeGeneral, "default"},
		// factual wins over performance when both match
		{"Their customers pay a high price", model.ClaimTypeFactualBusinessData, "keyword:customers"},
	}

	for _, tt := range tests {
		got := CategorizeClaim(tt.claim)
		if got.Type != tt.want {
			t.Errorf("CategorizeClaim(%q) = %s, want %s", tt.claim, got.Type, tt.want)
		}
		if got.Heuristic != tt.heuristic {
			t.Errorf("CategorizeClaim(%q) heuristic = %s, want %s", tt.claim, got.Heuristic, tt.heuristic)
		}
	}
}

func TestNeedsComparisonSearch(t *testing.T) {
	if NeedsComparisonSearch([]string{"Founded in 2015", "Has 200 employees"}) {
		t.Error("factual claims should not trigger a comparison search")
	}
	if !NeedsComparisonSearch([]string{"Founded in 2015", "Our PRICE is half"}) {
		t.Error("price claim should trigger a comparison search")
	}
	if NeedsComparisonSearch(nil) {
		t.Error("no claims, no search")
	}
}

func TestCleanClaims(t *testing.T) {
	got := CleanClaims([]string{" a ", "", "b", "a", "  "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected result: %v", got)
	}
}
