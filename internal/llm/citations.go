package llm

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"']+`)

// ExtractURLs returns the distinct http(s) URLs in text, in order of appearance
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, url := range matches {
		url = strings.TrimRight(url, ".,;:!?")
		if !seen[url] {
			seen[url] = true
			unique = append(unique, url)
		}
	}

	return unique
}

// CheckCitations splits the URLs cited in a narrative into those found in
// allowed and those the model produced on its own
func CheckCitations(narrative string, allowed []string) (cited, leaked []string) {
	allow := make(map[string]bool, len(allowed))
	for _, u := range allowed {
		allow[normalizeCitation(u)] = true
	}
	for _, u := range ExtractURLs(narrative) {
		cited = append(cited, u)
		if !allow[normalizeCitation(u)] {
			leaked = append(leaked, u)
		}
	}
	return cited, leaked
}

// normalizeCitation ignores trailing slashes so "x.com/a/" matches "x.com/a"
func normalizeCitation(u string) string {
	return strings.TrimSuffix(u, "/")
}
