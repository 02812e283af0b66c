package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketpulse/internal/source"
)

func TestQuote(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "^BSESN" {
			t.Errorf("symbols = %q", got)
		}
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"regularMarketPrice":81234.5,"regularMarketChangePercent":-0.42}]}}`))
	}))
	defer server.Close()

	c := New(source.NewClient(time.Second, nil), server.URL)

	q, err := c.Quote(context.Background(), "Sensex", "^BSESN")
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if q.Name != "Sensex" {
		t.Fatalf("name = %s", q.Name)
	}
	if q.Price != 81234.5 || q.ChangePct != -0.42 {
		t.Fatalf("quote = %+v", q)
	}
}

func TestQuoteEmptyResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[]}}`))
	}))
	defer server.Close()

	c := New(source.NewClient(time.Second, nil), server.URL)
	if _, err := c.Quote(context.Background(), "Sensex", "^BSESN"); err == nil {
		t.Fatal("expected error for empty result")
	}
}
