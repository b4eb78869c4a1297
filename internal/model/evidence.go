package model

import "time"

// Evidence is a source URL gathered while verifying a deck
type Evidence struct {
	URL       string        `json:"url"`
	Kind      EvidenceKind  `json:"kind"`
	Host      string        `json:"host,omitempty"`
	Authority AuthorityTier `json:"authority,omitempty"`
	Title     string        `json:"title,omitempty"`
	Stage     string        `json:"stage,omitempty"` // Pipeline stage that collected it
}

// EvidenceKind classifies where a source URL came from
type EvidenceKind string

const (
	EvidenceKindSearchResult  EvidenceKind = "search_result"  // Returned by web search
	EvidenceKindNarrativeLink EvidenceKind = "narrative_link" // Cited inside a model narrative
)

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Regulators, filings, statistics offices, academia
	TierSecondary AuthorityTier = 2 // Business databases, analysts, major press
	TierTertiary  AuthorityTier = 3 // Blogs, vendor marketing, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (t *AuthorityTier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "primary":
		*t = TierPrimary
	case "secondary":
		*t = TierSecondary
	case "tertiary":
		*t = TierTertiary
	default:
		*t = TierUnknown
	}
	return nil
}

// ValidationResult is the assessment of one source URL
type ValidationResult struct {
	URL          string        `json:"url"`
	Stage        string        `json:"stage,omitempty"`
	Authority    AuthorityTier `json:"authority"`
	Checked      bool          `json:"checked"` // Whether a liveness request was made
	IsAccessible bool          `json:"is_accessible"`
	IsDead       bool          `json:"is_dead"`
	StatusCode   int           `json:"status_code,omitempty"`
	LastModified *time.Time    `json:"last_modified,omitempty"`
	RedirectURL  string        `json:"redirect_url,omitempty"`
	Skipped      string        `json:"skipped,omitempty"` // Reason no request was made (e.g. robots.txt)
	Error        string        `json:"error,omitempty"`
}
