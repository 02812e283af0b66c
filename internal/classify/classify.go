package classify

import (
	"strings"

	"marketpulse/internal/domain"
)

// Static lexicons, matched case-insensitively as plain substrings. Matching
// is deliberately not tokenized; the occasional false positive is accepted.
var (
	globalImpactTerms = []string{
		"tariff", "trade war", "fed", "federal reserve", "ecb", "boj",
		"central bank", "rate decision", "crude", "brent", "wti", "opec",
		"dollar index", "dxy",
	}

	localMarketTerms = []string{
		"sensex", "nifty", "bank nifty", "rbi", "sebi", "rupee", "bse", "nse",
		"dalal street", "repo rate", "fii", "dii", "ipo", "gmp", "nclt",
		"upper circuit", "lower circuit",
	}

	foreignMarketTerms = []string{
		"wall street", "dow jones", "nasdaq", "s&p 500", "ftse", "nikkei",
		"hang seng", "shanghai composite", "kospi", "dax",
	}

	targetCountryTerms = []string{
		"india", "indian", "mumbai", "delhi",
	}
)

// Classifier assigns exactly one relevance tag per candidate.
type Classifier struct {
	strictLocality bool
}

// New builds a classifier. With strictLocality enabled, titles without a
// local-market term are rejected unless a global-impact term saves them.
func New(strictLocality bool) *Classifier {
	return &Classifier{strictLocality: strictLocality}
}

// Classify is a pure function of (title, body) and the static lexicons.
// Precedence: global impact beats locality checks, because a macro story can
// move the local market without naming it.
func (c *Classifier) Classify(title, body string) domain.ClassificationTag {
	foldedTitle := strings.ToLower(title)
	foldedAll := foldedTitle + " " + strings.ToLower(body)

	if containsAny(foldedAll, globalImpactTerms) {
		return domain.TagGlobalImpact
	}

	hasLocal := containsAny(foldedTitle, localMarketTerms)

	if c.strictLocality && !hasLocal {
		return domain.TagRejected
	}
	if containsAny(foldedTitle, foreignMarketTerms) && !hasLocal {
		return domain.TagRejected
	}
	if hasLocal {
		return domain.TagMarketUpdate
	}
	if containsAny(foldedAll, targetCountryTerms) {
		return domain.TagMarketUpdate
	}

	return domain.TagRejected
}

func containsAny(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
