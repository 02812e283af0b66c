package usecase

import (
	"context"
	"log/slog"

	"marketpulse/internal/classify"
	"marketpulse/internal/domain"
	"marketpulse/internal/join"
	"marketpulse/internal/ports"
	"marketpulse/internal/source"
	"marketpulse/internal/state"
)

// IndexSpec names one index and its quote symbol, in display order.
type IndexSpec struct {
	Name   string
	Symbol string
}

// PipelineDeps wires all collaborators into the scheduled cycles.
type PipelineDeps struct {
	Collector  *source.Collector
	Classifier *classify.Classifier
	Gate       *Gate
	Store      *state.Store
	Notifier   ports.Notifier
	Quotes     ports.QuoteClient
	Indices    []IndexSpec
	Listings   ports.ListingSource
	Premiums   ports.PremiumSource
	Flows      ports.FlowsSource
	Logger     *slog.Logger
}

// Pipeline implements the jobs the cadence driver fires: the interval news
// cycle, the calendar digests, and the daily reset.
type Pipeline struct {
	collector  *source.Collector
	classifier *classify.Classifier
	gate       *Gate
	store      *state.Store
	notifier   ports.Notifier
	quotes     ports.QuoteClient
	indices    []IndexSpec
	listings   ports.ListingSource
	premiums   ports.PremiumSource
	flows      ports.FlowsSource
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		collector:  deps.Collector,
		classifier: deps.Classifier,
		gate:       deps.Gate,
		store:      deps.Store,
		notifier:   deps.Notifier,
		quotes:     deps.Quotes,
		indices:    deps.Indices,
		listings:   deps.Listings,
		premiums:   deps.Premiums,
		flows:      deps.Flows,
		logger:     logger,
	}
}

// NewsCycle collects candidates from every feed, classifies them, and pushes
// each through the gate. Per-item failures never abort the cycle; the cycle
// ends early once the quota is spent.
func (p *Pipeline) NewsCycle(ctx context.Context) {
	items := p.collector.Collect(ctx)
	if len(items) == 0 {
		p.logger.Debug("news cycle produced no candidates")
		return
	}

	for _, item := range items {
		tag := p.classifier.Classify(item.Title, item.Body)

		verdict, err := p.gate.Admit(ctx, item, tag, formatNews(item), item.URL)
		if err != nil {
			p.logger.Warn("delivery failed, item left for retry", "source", item.SourceID, "error", err)
			continue
		}
		if verdict == VerdictSkipQuotaExceeded {
			p.logger.Info("daily quota exhausted, ending cycle")
			return
		}
	}
}

// MarketSnapshot posts an index digest under the given heading. A cycle in
// which every symbol failed posts nothing; partial failures show NA lines.
func (p *Pipeline) MarketSnapshot(ctx context.Context, heading string) {
	lines, any := p.collectIndices(ctx)
	if !any {
		p.logger.Warn("all index quotes failed, snapshot skipped", "heading", heading)
		return
	}
	p.deliverDigest(ctx, formatIndices(heading, lines))
}

// ClosingSummary posts the end-of-day digest: indices plus institutional
// flows. The flows line degrades to "not available" on scrape failure.
func (p *Pipeline) ClosingSummary(ctx context.Context) {
	lines, anyQuote := p.collectIndices(ctx)

	snap, err := p.flows.Snapshot(ctx)
	flowsOK := err == nil
	if err != nil {
		p.logger.Warn("flows scrape failed", "error", err)
	}

	if !anyQuote && !flowsOK {
		p.logger.Warn("closing summary skipped, no source produced data")
		return
	}

	text := "🔔 <b>Closing Summary</b>\n" + formatIndices("📊 Market Indices", lines) + "\n\n" + formatFlows(snap, flowsOK)
	p.deliverDigest(ctx, text)
}

// IPODigest posts the joined calendar/premium tables. An empty side renders
// its "not available" bullet; the digest itself is always posted, that being
// its defined output even without data.
func (p *Pipeline) IPODigest(ctx context.Context) {
	listings, err := p.listings.Listings(ctx)
	if err != nil {
		p.logger.Warn("ipo calendar fetch failed", "error", err)
	}
	premiums, err := p.premiums.Quotes(ctx)
	if err != nil {
		p.logger.Warn("premium table fetch failed", "error", err)
	}

	joined := join.Match(listings, premiums)
	p.deliverDigest(ctx, formatIPO(joined, premiums))
}

// ResetDay replaces the publication record wholesale for the new day.
func (p *Pipeline) ResetDay(_ context.Context) {
	p.store.Reset()
	p.logger.Info("daily state reset")
}

type indexLine struct {
	name  string
	quote *domain.IndexQuote
}

func (p *Pipeline) collectIndices(ctx context.Context) ([]indexLine, bool) {
	lines := make([]indexLine, 0, len(p.indices))
	any := false
	for _, spec := range p.indices {
		q, err := p.quotes.Quote(ctx, spec.Name, spec.Symbol)
		if err != nil {
			p.logger.Warn("index quote failed", "index", spec.Name, "error", err)
			lines = append(lines, indexLine{name: spec.Name})
			continue
		}
		any = true
		lines = append(lines, indexLine{name: spec.Name, quote: &q})
	}
	return lines, any
}

func (p *Pipeline) deliverDigest(ctx context.Context, text string) {
	if err := p.notifier.Deliver(ctx, text, ""); err != nil {
		p.logger.Warn("digest delivery failed", "error", err)
	}
}
