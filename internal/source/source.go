package source

import (
	"context"
	"log/slog"
	"time"

	"marketpulse/internal/domain"
)

// Source pulls normalized candidate items from one upstream endpoint. The
// returned slice keeps the source's native order.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.CandidateItem, error)
}

// Collector runs every configured source for one cycle. Each source gets its
// own deadline; a fetch or parse failure yields nothing for that source only,
// logged, never aborting siblings. Sources run in configured order and no
// cross-source re-sorting happens.
type Collector struct {
	sources []Source
	timeout time.Duration
	logger  *slog.Logger
}

// NewCollector wires the ordered source list.
func NewCollector(sources []Source, timeout time.Duration, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Collector{sources: sources, timeout: timeout, logger: logger}
}

// Collect gathers candidates from all sources, tolerating partial failure.
func (c *Collector) Collect(ctx context.Context) []domain.CandidateItem {
	var out []domain.CandidateItem
	for _, src := range c.sources {
		items, err := c.fetchOne(ctx, src)
		if err != nil {
			c.logger.Warn("source fetch failed", "source", src.Name(), "error", err)
			continue
		}
		c.logger.Debug("source fetched", "source", src.Name(), "items", len(items))
		out = append(out, items...)
	}
	return out
}

func (c *Collector) fetchOne(ctx context.Context, src Source) ([]domain.CandidateItem, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return src.Fetch(fetchCtx)
}
