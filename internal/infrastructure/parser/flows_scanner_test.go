package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketpulse/internal/source"
)

func TestFlowsScannerSnapshot(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	<div>Institutional activity today</div>
	<div>FII CM* -1,234.56 Cr</div>
	<div>DII CM 2,001.10 Cr</div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	sc := NewFlowsScanner(source.NewClient(time.Second, nil), server.URL)

	snap, err := sc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.FII != -1234.56 {
		t.Fatalf("FII = %v, want -1234.56", snap.FII)
	}
	if snap.DII != 2001.10 {
		t.Fatalf("DII = %v, want 2001.10", snap.DII)
	}
}

func TestFlowsScannerMissingFigure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>FII CM 100.0 only</body></html>"))
	}))
	defer server.Close()

	sc := NewFlowsScanner(source.NewClient(time.Second, nil), server.URL)
	if _, err := sc.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error when DII figure is absent")
	}
}
