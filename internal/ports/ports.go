package ports

import (
	"context"

	"marketpulse/internal/domain"
)

// StateRepository persists the per-day publication record. Only the current
// day is retained; saving a new day replaces whatever came before it.
type StateRepository interface {
	Load(ctx context.Context, day string) (domain.PublicationRecord, bool, error)
	Save(ctx context.Context, record domain.PublicationRecord) error
}

// Notifier delivers formatted text to the downstream channel. The text may
// carry a small HTML subset (bold, italic, one link). A non-nil error means
// the message must be considered undelivered.
type Notifier interface {
	Deliver(ctx context.Context, text string, link string) error
}

// QuoteClient reads index snapshots for the market digests.
type QuoteClient interface {
	Quote(ctx context.Context, name, symbol string) (domain.IndexQuote, error)
}

// ListingSource provides the IPO calendar table.
type ListingSource interface {
	Listings(ctx context.Context) ([]domain.ListingRecord, error)
}

// PremiumSource provides the grey-market premium table.
type PremiumSource interface {
	Quotes(ctx context.Context) ([]domain.PremiumQuote, error)
}

// FlowsSource provides the institutional cash-flow snapshot.
type FlowsSource interface {
	Snapshot(ctx context.Context) (domain.FlowSnapshot, error)
}
