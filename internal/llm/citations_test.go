package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractURLs(t *testing.T) {
	text := "See [Crunchbase](https://crunchbase.com/org/acme). Also https://acme.io/pricing, " +
		"and again https://crunchbase.com/org/acme."

	urls := ExtractURLs(text)

	assert.Equal(t, []string{"https://crunchbase.com/org/acme", "https://acme.io/pricing"}, urls)
}

func TestExtractURLs_None(t *testing.T) {
	assert.Empty(t, ExtractURLs("no links here"))
}

func TestCheckCitations(t *testing.T) {
	allowed := []string{"https://a.com/report/", "https://b.org/x"}
	narrative := "Per [A](https://a.com/report) and [C](https://c.net/made-up), the market is smaller."

	cited, leaked := CheckCitations(narrative, allowed)

	assert.Equal(t, []string{"https://a.com/report", "https://c.net/made-up"}, cited)
	assert.Equal(t, []string{"https://c.net/made-up"}, leaked)
}
