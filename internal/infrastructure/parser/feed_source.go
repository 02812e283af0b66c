package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"marketpulse/internal/domain"
	"marketpulse/internal/source"
)

const feedItemLimit = 10

// FeedSource adapts one RSS/Atom endpoint into candidate items. The entry
// GUID serves as the natural key when present; links and titles are fallback
// keys since feeds are not consistent about identifiers.
type FeedSource struct {
	name   string
	url    string
	client *source.Client
	parser *gofeed.Parser
	limit  int
	now    func() time.Time
}

var _ source.Source = (*FeedSource)(nil)

// NewFeedSource wires a named feed endpoint onto the shared fetch client.
func NewFeedSource(name, url string, client *source.Client) *FeedSource {
	return &FeedSource{
		name:   name,
		url:    url,
		client: client,
		parser: gofeed.NewParser(),
		limit:  feedItemLimit,
		now:    time.Now,
	}
}

// Name identifies the source in logs and candidate items.
func (s *FeedSource) Name() string {
	return s.name
}

// Fetch downloads and parses the feed, keeping the feed's native order.
func (s *FeedSource) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := s.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.CandidateItem, 0, s.limit)
	for _, entry := range feed.Items {
		if len(items) >= s.limit {
			break
		}
		if entry == nil || entry.Title == "" {
			continue
		}

		key := entry.GUID
		if key == "" {
			key = entry.Link
		}
		if key == "" {
			key = entry.Title
		}

		observed := s.now()
		if entry.PublishedParsed != nil {
			observed = *entry.PublishedParsed
		}

		items = append(items, domain.CandidateItem{
			SourceID:   s.name,
			NaturalKey: key,
			Title:      entry.Title,
			Body:       entry.Description,
			URL:        entry.Link,
			ObservedAt: observed,
		})
	}

	return items, nil
}
