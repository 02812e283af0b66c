package parser

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
	"marketpulse/internal/source"
)

var (
	fiiExpr = regexp.MustCompile(`(?i)FII\s+CM\*?\s*([+\-]?\d[\d,]*\.?\d*)`)
	diiExpr = regexp.MustCompile(`(?i)DII\s+CM\*?\s*([+\-]?\d[\d,]*\.?\d*)`)
)

// FlowsScanner extracts net FII/DII cash figures from the flows page. The
// page has no stable markup, so matching runs over its flattened text.
type FlowsScanner struct {
	client *source.Client
	url    string
}

var _ ports.FlowsSource = (*FlowsScanner)(nil)

// NewFlowsScanner wires the flows endpoint onto the shared fetch client.
func NewFlowsScanner(client *source.Client, url string) *FlowsScanner {
	return &FlowsScanner{client: client, url: url}
}

// Snapshot returns today's net flows or an error when either figure is
// missing from the page.
func (s *FlowsScanner) Snapshot(ctx context.Context) (domain.FlowSnapshot, error) {
	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		return domain.FlowSnapshot{}, fmt.Errorf("fetch flows page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.FlowSnapshot{}, fmt.Errorf("parse flows page: %w", err)
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")

	fii, err := extractFigure(fiiExpr, text)
	if err != nil {
		return domain.FlowSnapshot{}, fmt.Errorf("flows page: FII figure: %w", err)
	}
	dii, err := extractFigure(diiExpr, text)
	if err != nil {
		return domain.FlowSnapshot{}, fmt.Errorf("flows page: DII figure: %w", err)
	}

	return domain.FlowSnapshot{FII: fii, DII: dii}, nil
}

func extractFigure(expr *regexp.Regexp, text string) (float64, error) {
	m := expr.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("pattern not found")
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", m[1], err)
	}
	return value, nil
}
