package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// AuthorityClassifier assigns source URLs to authority tiers by domain
type AuthorityClassifier struct {
	domainMap map[string]model.AuthorityTier
	primary   []string
	secondary []string
}

// primarySuffixes are public-sector and academic namespaces
var primarySuffixes = []string{".gov", ".edu", ".int", ".mil", ".ac.uk", ".gov.uk", ".gc.ca", ".gov.au"}

// NewAuthorityClassifier creates a classifier; nil config uses the built-in domain lists
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	c := &AuthorityClassifier{domainMap: make(map[string]model.AuthorityTier)}
	for host, tier := range config.DomainMap {
		c.domainMap[normalizeHost(host)] = parseTier(tier)
	}
	for _, d := range config.PrimaryDomains {
		c.primary = append(c.primary, normalizeHost(d))
	}
	for _, d := range config.SecondaryDomains {
		c.secondary = append(c.secondary, normalizeHost(d))
	}
	return c
}

// Classify returns the tier of rawURL. Explicit mappings win, then primary
// and secondary domain lists (subdomains included), then public-sector suffixes.
// Everything else, including unparseable URLs, is tertiary.
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.TierTertiary
	}
	host := normalizeHost(parsed.Hostname())

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}
	if matchesAny(host, a.primary) {
		return model.TierPrimary
	}
	if matchesAny(host, a.secondary) {
		return model.TierSecondary
	}
	for _, suffix := range primarySuffixes {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}
	return model.TierTertiary
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
}

func parseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(tier) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
