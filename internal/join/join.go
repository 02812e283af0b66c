package join

import (
	"strings"

	"marketpulse/internal/domain"
)

// Joined pairs a listing with its premium quote, when one was found.
type Joined struct {
	Listing domain.ListingRecord
	Premium *domain.PremiumQuote
}

// Match joins each listing to the premium table by case-folded company name.
// Exact equality wins; on a miss, the first premium row (in table order)
// whose name contains, or is contained by, the listing name is taken. The
// fallback tie-break follows the upstream table's iteration order and is not
// guaranteed stable between polls. A listing may legitimately stay unmatched.
func Match(listings []domain.ListingRecord, premiums []domain.PremiumQuote) []Joined {
	out := make([]Joined, 0, len(listings))
	for _, listing := range listings {
		out = append(out, Joined{
			Listing: listing,
			Premium: matchOne(listing, premiums),
		})
	}
	return out
}

func matchOne(listing domain.ListingRecord, premiums []domain.PremiumQuote) *domain.PremiumQuote {
	name := foldName(listing.Company)
	if name == "" {
		return nil
	}

	for i := range premiums {
		if foldName(premiums[i].CompanyRaw) == name {
			return &premiums[i]
		}
	}

	for i := range premiums {
		candidate := foldName(premiums[i].CompanyRaw)
		if candidate == "" {
			continue
		}
		if strings.Contains(name, candidate) || strings.Contains(candidate, name) {
			return &premiums[i]
		}
	}

	return nil
}

func foldName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
