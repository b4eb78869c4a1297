package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// Binary market verdicts the adjudication reply must use
const (
	MarketVerdictCorrect      = "pretty much correct"
	MarketVerdictExaggeration = "a big exaggeration"
)

const classifySystem = `You label slides of a startup pitch deck. Answer with exactly one tag from the list, verbatim, and nothing else.`

func classifyPrompt(pageNumber int, text string) string {
	var b strings.Builder
	b.WriteString("Which of these tags describes the slide best?\n")
	for _, t := range model.AllTopics {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	fmt.Fprintf(&b, "\nSlide %d text:\n%s\n", pageNumber, orNone(text))
	b.WriteString("\nReply with the tag only.")
	return b.String()
}

func reclassifyPrompt(pageNumber int, text, previous string) string {
	return fmt.Sprintf("Your previous answer %q is not one of the allowed tags.\n\n%s",
		oneLine(previous, 80), classifyPrompt(pageNumber, text))
}

// pagePrompt attaches the extracted slide text to an instruction for a multimodal call
func pagePrompt(instruction, text string) string {
	return fmt.Sprintf("%s\n\nText extracted from the slide:\n%s", strings.TrimSpace(instruction), orNone(text))
}

const marketExtractPrompt = `Read this market size slide. Write down every market figure it states
(TAM, SAM, SOM, growth rates, customer counts), the year and geography each
figure refers to, and any source the slide cites. Quote numbers exactly as shown.`

func marketJudgePrompt(extracted string, results []model.SearchHit, generalContext string) string {
	var b strings.Builder
	b.WriteString("Judge the market size claims of a startup pitch deck.\n\n")
	fmt.Fprintf(&b, "FIGURES FROM THE SLIDE:\n%s\n\n", orNone(extracted))
	fmt.Fprintf(&b, "STARTUP CONTEXT:\n%s\n\n", orNone(generalContext))
	if len(results) == 0 {
		b.WriteString("No web search results were found. Rely on your own estimate of this market.\n\n")
	} else {
		fmt.Fprintf(&b, "WEB SEARCH RESULTS:\n%s\n\n", asJSON(results))
	}
	fmt.Fprintf(&b, "Your verdict must be exactly one of %q or %q. State it first, then explain in\n",
		MarketVerdictCorrect, MarketVerdictExaggeration)
	b.WriteString("at most five sentences comparing the slide's TAM/SAM with the evidence. Cite source URLs from the\n")
	b.WriteString("search results inline where you use them. Do not cite any other URL.")
	return b.String()
}

const founderExtractPrompt = `List the founders shown on this team slide. Return ONLY valid JSON, one entry per
person, no duplicates:

{
  "founders": [
    {
      "name": "Full Name",
      "role": "CEO/CTO/Founder/etc",
      "background": "Previous companies and roles",
      "experience": "Years of experience or key achievements",
      "education": "University, degree, graduation year",
      "skills": "Technical skills, programming languages, expertise areas",
      "interests": "Relevant interests or specializations"
    }
  ]
}

If the slide shows no founders, return {"founders": []}.`

func credibilityPrompt(founder model.Founder, found model.FounderSearch) string {
	return fmt.Sprintf(`Compare a founder's claimed background with what the web says about them.

CLAIMED ON THE SLIDE:
%s

WEB SEARCH RESULTS:
%s

Return ONLY valid JSON:
{
  "credibility_score": 85,
  "is_technical_founder": true,
  "background_verified": true,
  "linkedin_found": true,
  "startup_experience": true,
  "discrepancies": ["Inconsistencies between slide and web"],
  "technical_evidence": ["Programming languages", "Engineering roles", "CS degree"],
  "verified_facts": ["Confirmed previous roles", "Education verified"],
  "red_flags": ["Concerning findings"],
  "confidence_level": "high"
}

credibility_score is 0-100. confidence_level is low, medium or high.`, asJSON(founder), asJSON(found))
}

func teamFeedbackPrompt(founders []model.VerifiedFounder, generalContext string) string {
	return fmt.Sprintf(`Write SHORT, direct feedback on the founding team of a startup, based on
their pitch deck claims checked against web search.

FOUNDERS WITH WEB EVIDENCE:
%s

STARTUP CONTEXT:
%s

Say whether each founder is credible and whether their stated background holds up.
Say whether this is the right team for the project, for example whether a technical
founder is missing. Embed the source URL of each fact you use. Only cite URLs that
appear in the web evidence above.`, asJSON(founders), orNone(generalContext))
}

const competitorExtractPrompt = `Extract every specific claim this slide makes about competitors. Keep FACTUAL
statements that can be checked, not opinions. Use the exact wording of the slide.

Return ONLY valid JSON:
{
  "competitor_claims": [
    {
      "competitor_name": "Exact company name",
      "factual_claims": ["They have X users", "They raised $X million", "Founded in YEAR"],
      "feature_claims": ["They only support X", "They lack Y"],
      "performance_claims": ["They are slower than us", "Their prices are higher"],
      "positioning_claims": ["Unlike them, we...", "They target X, we target Y"]
    }
  ],
  "market_position_claims": ["We are the first to...", "No one else does..."]
}

If no competitors are mentioned, return empty arrays.`

// verifyClaimsPrompt asks for one verdict per claim, in the given order
func verifyClaimsPrompt(subject string, claims []string, evidence map[string][]model.SearchHit, order []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verify ALL these claims about %s using the search results provided.\n\n", subject)
	fmt.Fprintf(&b, "CLAIMS TO VERIFY:\n%s\n\n", asJSON(claims))
	for _, label := range order {
		fmt.Fprintf(&b, "%s:\n%s\n\n", label, asJSON(evidence[label]))
	}
	b.WriteString(`Return ONLY valid JSON, one entry per claim, in the order given:
{
  "claim_verifications": [
    {
      "claim": "exact claim text",
      "verdict": "accurate|inaccurate|partially_accurate|insufficient_evidence",
      "confidence": "high|medium|low",
      "supporting_evidence": "Specific evidence",
      "contradicting_evidence": "Contradicting evidence if any",
      "accuracy_score": 75,
      "evidence_quality": "strong|moderate|weak|none"
    }
  ]
}

Be strict. Without evidence the verdict is insufficient_evidence.`)
	return b.String()
}

func competitionFeedbackPrompt(verified []model.VerifiedClaim, summary model.AccuracySummary, generalContext string) string {
	return fmt.Sprintf(`Write CONCISE feedback on the accuracy of the competitor claims in a pitch deck.

CLAIM VERIFICATION RESULTS:
%s

ACCURACY SUMMARY:
%s

STARTUP CONTEXT:
%s

Cover which specific claims are accurate and which are not, misleading or unfair
descriptions of competitors, and red flags. Quote the inaccurate claims. Link sources
in markdown where the verification results carry them. Stay under 200 words.`,
		asJSON(verified), asJSON(summary), orNone(generalContext))
}

const synthesizeSystem = `You map due-diligence feedback on a pitch deck onto the slides it concerns.
Each slide comes with text blocks and their coordinates on a 900x1600 canvas.
Match every negative finding to the text block it is about.

Return ONLY a JSON list:
[
  {
    "feedback": "specific feedback about this element",
    "coordinates": {"x0": 100, "y0": 200, "x1": 300, "y1": 250},
    "page_number": 1,
    "slide_type": "team_slide",
    "status": "refuted"
  }
]

page_number must be one of the pages provided. status is "refuted" when the
information was disproven or contradicted, "unclear" when it could not be
verified or is ambiguous. Return [] when nothing is negative.`

// synthesisPage is a slide as shown to the synthesizer
type synthesisPage struct {
	PageNumber int               `json:"page_number"`
	SlideType  model.Topic       `json:"slide_type"`
	Feedback   string            `json:"feedback"`
	Blocks     []model.TextBlock `json:"text_with_coordinates"`
}

func synthesizePrompt(pages []synthesisPage) string {
	var b strings.Builder
	b.WriteString("Feedback and slides:\n\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "%s feedback (page %d):\n%s\n\n", p.SlideType, p.PageNumber, orNone(p.Feedback))
	}
	fmt.Fprintf(&b, "Slides with coordinates:\n%s\n\n", asJSON(pages))
	b.WriteString("Give every item the page_number of the slide it belongs to.")
	return b.String()
}

func asJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
