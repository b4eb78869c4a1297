package extract

import (
	"strings"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// claimKeywords is checked in order; the first category with a matching keyword wins
var claimKeywords = []struct {
	claimType model.ClaimType
	keywords  []string
}{
	{model.ClaimTypeFactualBusinessData, []string{"users", "customers", "revenue", "funding", "founded", "employees"}},
	{model.ClaimTypeFeatureComparison, []string{"feature", "capability", "support", "platform", "technology"}},
	{model.ClaimTypePerformanceComparison, []string{"price", "cost", "expensive", "cheap", "faster", "slower"}},
	{model.ClaimTypePositioning, []string{"better", "unlike", "different", "superior", "advantage"}},
}

// comparisonKeywords mark claims that need pricing or benchmark evidence
var comparisonKeywords = []string{"faster", "slower", "better", "price", "cost"}

// Categorization is the claim type plus the keyword that decided it
type Categorization struct {
	Type      model.ClaimType
	Heuristic string // "keyword:<kw>", or "default" for general claims
}

// CategorizeClaim assigns a claim type by case-insensitive substring match
func CategorizeClaim(claim string) Categorization {
	lower := strings.ToLower(claim)
	for _, group := range claimKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return Categorization{Type: group.claimType, Heuristic: "keyword:" + kw}
			}
		}
	}
	return Categorization{Type: model.ClaimTypeGeneral, Heuristic: "default"}
}

// NeedsComparisonSearch reports whether any claim talks about speed, quality or price
func NeedsComparisonSearch(claims []string) bool {
	for _, c := range claims {
		lower := strings.ToLower(c)
		for _, kw := range comparisonKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// CleanClaims trims claims and drops blanks and exact repeats, keeping order
func CleanClaims(claims []string) []string {
	seen := make(map[string]bool, len(claims))
	out := make([]string, 0, len(claims))
	for _, c := range claims {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
