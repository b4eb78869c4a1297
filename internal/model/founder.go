package model

// Founder is a team member as presented on the team slide
type Founder struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Background string `json:"background"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	Skills     string `json:"skills"`
	Interests  string `json:"interests"`
}

// FounderSearch holds the web evidence gathered for one founder
type FounderSearch struct {
	LinkedInSearch []SearchHit `json:"linkedin_search"`
	StartupSearch  []SearchHit `json:"startup_search"`
	SearchSuccess  bool        `json:"search_success"`
	Error          string      `json:"error,omitempty"`
}

// SearchHit is a single web search result as carried in outputs
type SearchHit struct {
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url"`
	Content string  `json:"content,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// CredibilityAnalysis is the model's cross-check of a founder's claims
type CredibilityAnalysis struct {
	CredibilityScore   float64    `json:"credibility_score"`
	IsTechnicalFounder bool       `json:"is_technical_founder"`
	BackgroundVerified bool       `json:"background_verified"`
	LinkedInFound      bool       `json:"linkedin_found"`
	StartupExperience  bool       `json:"startup_experience"`
	Discrepancies      []string   `json:"discrepancies"`
	TechnicalEvidence  []string   `json:"technical_evidence"`
	VerifiedFacts      []string   `json:"verified_facts"`
	RedFlags           []string   `json:"red_flags"`
	ConfidenceLevel    Confidence `json:"confidence_level"`
}

// UnparsedCredibility is recorded when the credibility reply could not be decoded
func UnparsedCredibility() CredibilityAnalysis {
	return CredibilityAnalysis{
		CredibilityScore:  0,
		Discrepancies:     []string{"Failed to parse analysis"},
		TechnicalEvidence: []string{},
		VerifiedFacts:     []string{},
		RedFlags:          []string{"Analysis parsing failed"},
		ConfidenceLevel:   ConfidenceLow,
	}
}

// VerifiedFounder is a founder with search evidence and credibility analysis attached
type VerifiedFounder struct {
	Founder
	InternetVerification FounderSearch       `json:"internet_verification"`
	CredibilityAnalysis  CredibilityAnalysis `json:"credibility_analysis"`
	AnalysisParsed       bool                `json:"analysis_parsed"`
}
