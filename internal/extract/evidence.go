package extract

import (
	"net/url"
	"strings"

	"github.com/ppiankov/pitchcheck/internal/llm"
	"github.com/ppiankov/pitchcheck/internal/model"
)

// EvidenceFromHits records each search hit as evidence collected by stage
func EvidenceFromHits(stage string, hits []model.SearchHit) []model.Evidence {
	evidence := make([]model.Evidence, 0, len(hits))
	for _, hit := range hits {
		if ev, ok := newEvidence(hit.URL, model.EvidenceKindSearchResult, stage); ok {
			ev.Title = hit.Title
			evidence = append(evidence, ev)
		}
	}
	return DedupeEvidence(evidence)
}

// EvidenceFromNarrative records the URLs a model cited in its narrative
func EvidenceFromNarrative(stage, narrative string) []model.Evidence {
	var evidence []model.Evidence
	for _, u := range llm.ExtractURLs(narrative) {
		if ev, ok := newEvidence(u, model.EvidenceKindNarrativeLink, stage); ok {
			evidence = append(evidence, ev)
		}
	}
	return evidence
}

func newEvidence(raw string, kind model.EvidenceKind, stage string) (model.Evidence, bool) {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return model.Evidence{}, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return model.Evidence{}, false
	}
	parsed.Fragment = ""

	return model.Evidence{
		URL:   parsed.String(),
		Kind:  kind,
		Host:  strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www."),
		Stage: stage,
	}, true
}

// DedupeEvidence keeps the first occurrence of each URL. A search result beats
// a narrative link for the same URL because it carries a title.
func DedupeEvidence(evidence []model.Evidence) []model.Evidence {
	index := make(map[string]int, len(evidence))
	out := make([]model.Evidence, 0, len(evidence))
	for _, ev := range evidence {
		key := strings.TrimSuffix(ev.URL, "/")
		if i, ok := index[key]; ok {
			if out[i].Kind == model.EvidenceKindNarrativeLink && ev.Kind == model.EvidenceKindSearchResult {
				out[i] = ev
			}
			continue
		}
		index[key] = len(out)
		out = append(out, ev)
	}
	return out
}
