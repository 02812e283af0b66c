package usecase

import (
	"context"
	"log/slog"
	"sync"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
	"marketpulse/internal/state"
)

// Verdict is the admission decision for one candidate.
type Verdict string

const (
	VerdictPublish           Verdict = "publish"
	VerdictSkipDuplicate     Verdict = "skip-duplicate"
	VerdictSkipQuotaExceeded Verdict = "skip-quota-exceeded"
	VerdictSkipRejectedTag   Verdict = "skip-rejected-tag"
)

// Gate decides whether a classified candidate is actually delivered. The
// quota-check → duplicate-check → deliver → commit sequence runs under one
// mutex, so two candidates can never both observe a final free slot.
type Gate struct {
	mu       sync.Mutex
	store    *state.Store
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewGate wires the store and the delivery collaborator.
func NewGate(store *state.Store, notifier ports.Notifier, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{store: store, notifier: notifier, logger: logger}
}

// Admit runs the admission sequence for one candidate. A rejected tag skips
// without touching state. On Publish, the identity is recorded and the
// counter incremented only after confirmed delivery: a failed delivery
// returns the error, leaves the item unrecorded, and keeps it eligible for
// the next cycle instead of burning its dedup slot on a transient failure.
func (g *Gate) Admit(ctx context.Context, item domain.CandidateItem, tag domain.ClassificationTag, text, link string) (Verdict, error) {
	if tag == domain.TagRejected {
		return VerdictSkipRejectedTag, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.store.RemainingQuota() <= 0 {
		return VerdictSkipQuotaExceeded, nil
	}

	pair := state.KeyPair{
		NaturalKey:  item.NaturalKey,
		Fingerprint: state.Fingerprint(item.Title),
	}
	if g.store.Seen(pair) {
		return VerdictSkipDuplicate, nil
	}

	if err := g.notifier.Deliver(ctx, text, link); err != nil {
		return VerdictPublish, err
	}

	g.store.Record(pair)
	g.logger.Info("published", "source", item.SourceID, "tag", tag, "remaining", g.store.RemainingQuota())
	return VerdictPublish, nil
}
