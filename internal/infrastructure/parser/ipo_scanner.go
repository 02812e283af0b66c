package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
	"marketpulse/internal/source"
)

// IPOScanner scrapes the mainboard IPO calendar table: company, open/close
// dates, price band and lot size. The upstream layout is fragile; column
// positions are all we have.
type IPOScanner struct {
	client *source.Client
	url    string
	limit  int
}

var _ ports.ListingSource = (*IPOScanner)(nil)

// NewIPOScanner wires the calendar endpoint onto the shared fetch client.
func NewIPOScanner(client *source.Client, url string, limit int) *IPOScanner {
	if limit <= 0 {
		limit = 5
	}
	return &IPOScanner{client: client, url: url, limit: limit}
}

// Listings returns up to limit calendar rows in table order.
func (s *IPOScanner) Listings(ctx context.Context) ([]domain.ListingRecord, error) {
	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch ipo calendar: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ipo calendar: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("ipo calendar: no table in page")
	}

	var listings []domain.ListingRecord
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 || len(listings) >= s.limit {
			return
		}

		cols := cellTexts(row, "td, th")
		if len(cols) < 7 {
			return
		}

		detail, _ := row.Find("a").First().Attr("href")

		listings = append(listings, domain.ListingRecord{
			Company:   cols[0],
			OpenDate:  cols[2],
			CloseDate: cols[3],
			PriceBand: cols[5],
			LotSize:   cols[6],
			DetailURL: detail,
		})
	})

	return listings, nil
}

func cellTexts(row *goquery.Selection, selector string) []string {
	var cols []string
	row.Find(selector).Each(func(_ int, cell *goquery.Selection) {
		cols = append(cols, strings.Join(strings.Fields(cell.Text()), " "))
	})
	return cols
}
