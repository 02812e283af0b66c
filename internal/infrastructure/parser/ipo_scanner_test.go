package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketpulse/internal/source"
)

const ipoFixture = `
<html><body>
<table>
  <tr><th>Company</th><th>Exchange</th><th>Open</th><th>Close</th><th>Listing</th><th>Price Band</th><th>Lot Size</th></tr>
  <tr>
    <td><a href="/ipo/acme-industries">Acme Industries Ltd</a></td>
    <td>BSE, NSE</td><td>25 Aug</td><td>27 Aug</td><td>1 Sep</td><td>₹95-100</td><td>150</td>
  </tr>
  <tr>
    <td><a href="/ipo/zenith-co">Zenith Co</a></td>
    <td>NSE</td><td>26 Aug</td><td>28 Aug</td><td>2 Sep</td><td>₹210-220</td><td>65</td>
  </tr>
  <tr><td>Broken Row</td></tr>
</table>
</body></html>`

func TestIPOScannerListings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ipoFixture))
	}))
	defer server.Close()

	sc := NewIPOScanner(source.NewClient(time.Second, nil), server.URL, 5)

	listings, err := sc.Listings(context.Background())
	if err != nil {
		t.Fatalf("Listings error: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(listings))
	}

	first := listings[0]
	if first.Company != "Acme Industries Ltd" {
		t.Fatalf("company = %s", first.Company)
	}
	if first.OpenDate != "25 Aug" || first.CloseDate != "27 Aug" {
		t.Fatalf("dates = %s / %s", first.OpenDate, first.CloseDate)
	}
	if first.PriceBand != "₹95-100" || first.LotSize != "150" {
		t.Fatalf("band/lot = %s / %s", first.PriceBand, first.LotSize)
	}
	if first.DetailURL != "/ipo/acme-industries" {
		t.Fatalf("detail = %s", first.DetailURL)
	}
}

func TestIPOScannerLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ipoFixture))
	}))
	defer server.Close()

	sc := NewIPOScanner(source.NewClient(time.Second, nil), server.URL, 1)

	listings, err := sc.Listings(context.Background())
	if err != nil {
		t.Fatalf("Listings error: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("listings = %d, want 1", len(listings))
	}
}

func TestIPOScannerNoTable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>maintenance</p></body></html>"))
	}))
	defer server.Close()

	sc := NewIPOScanner(source.NewClient(time.Second, nil), server.URL, 5)
	if _, err := sc.Listings(context.Background()); err == nil {
		t.Fatal("expected error when no table is present")
	}
}
