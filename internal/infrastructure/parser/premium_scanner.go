package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
	"marketpulse/internal/source"
)

// PremiumScanner scrapes the live grey-market premium table. Row layout:
// name, premium, (subscription), estimated listing.
type PremiumScanner struct {
	client *source.Client
	url    string
	limit  int
}

var _ ports.PremiumSource = (*PremiumScanner)(nil)

// NewPremiumScanner wires the premium-table endpoint onto the shared client.
func NewPremiumScanner(client *source.Client, url string, limit int) *PremiumScanner {
	if limit <= 0 {
		limit = 5
	}
	return &PremiumScanner{client: client, url: url, limit: limit}
}

// Quotes returns up to limit premium rows in table order. Table order is the
// tie-break for the fuzzy join downstream and is not guaranteed stable.
func (s *PremiumScanner) Quotes(ctx context.Context) ([]domain.PremiumQuote, error) {
	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch premium table: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse premium table: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("premium table: no table in page")
	}

	var quotes []domain.PremiumQuote
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 || len(quotes) >= s.limit {
			return
		}

		cols := cellTexts(row, "td")
		if len(cols) < 4 {
			return
		}

		quotes = append(quotes, domain.PremiumQuote{
			CompanyRaw: cols[0],
			Premium:    cols[1],
			EstListing: cols[3],
		})
	})

	return quotes, nil
}
