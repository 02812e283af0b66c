package domain

import "time"

// ClassificationTag is the single relevance label assigned to a candidate.
type ClassificationTag string

const (
	TagRejected     ClassificationTag = "rejected"
	TagMarketUpdate ClassificationTag = "market-update"
	TagGlobalImpact ClassificationTag = "global-impact"
)

// CandidateItem is a normalized unit of content considered for publication.
type CandidateItem struct {
	SourceID   string
	NaturalKey string // source-defined, optional; not guaranteed unique or stable
	Title      string
	Body       string
	URL        string
	ObservedAt time.Time
}

// PublicationRecord is the persisted form of one operating-day's state:
// identities already published plus the running counter against the quota.
type PublicationRecord struct {
	Day          string
	NaturalKeys  []string
	Fingerprints []string
	Published    int
}

// ListingRecord is one row of the IPO calendar table.
type ListingRecord struct {
	Company   string
	OpenDate  string
	CloseDate string
	PriceBand string
	LotSize   string
	DetailURL string
}

// PremiumQuote is one row of the grey-market premium table.
type PremiumQuote struct {
	CompanyRaw string
	Premium    string
	EstListing string
}

// IndexQuote is a single index snapshot from the quote endpoint.
type IndexQuote struct {
	Name      string
	Price     float64
	ChangePct float64
}

// FlowSnapshot holds net institutional cash flows in crore rupees.
type FlowSnapshot struct {
	FII float64
	DII float64
}
