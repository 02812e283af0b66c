package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
	"marketpulse/internal/source"
)

// Client reads index snapshots from a Yahoo-style quote endpoint.
type Client struct {
	client  *source.Client
	baseURL string
}

var _ ports.QuoteClient = (*Client)(nil)

// New wires the quote endpoint onto the shared fetch client.
func New(client *source.Client, baseURL string) *Client {
	return &Client{client: client, baseURL: baseURL}
}

// Quote fetches the price and day change for one symbol.
func (c *Client) Quote(ctx context.Context, name, symbol string) (domain.IndexQuote, error) {
	endpoint := fmt.Sprintf("%s?symbols=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.client.Get(ctx, endpoint)
	if err != nil {
		return domain.IndexQuote{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}

	var payload struct {
		QuoteResponse struct {
			Result []struct {
				RegularMarketPrice         float64 `json:"regularMarketPrice"`
				RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.IndexQuote{}, fmt.Errorf("decode quote %s: %w", symbol, err)
	}
	if len(payload.QuoteResponse.Result) == 0 {
		return domain.IndexQuote{}, fmt.Errorf("quote %s: empty result", symbol)
	}

	first := payload.QuoteResponse.Result[0]
	return domain.IndexQuote{
		Name:      name,
		Price:     first.RegularMarketPrice,
		ChangePct: first.RegularMarketChangePercent,
	}, nil
}
