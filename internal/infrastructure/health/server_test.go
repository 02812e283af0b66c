package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLivenessReportsOperatingTime(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	s := New(":0", loc, nil)
	s.now = func() time.Time {
		return time.Date(2026, 8, 24, 6, 30, 0, 0, time.UTC)
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("probe request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		OK      bool   `json:"ok"`
		Service string `json:"service"`
		Time    string `json:"time"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.OK || body.Service != "marketpulse" {
		t.Fatalf("unexpected body: %+v", body)
	}
	// 06:30 UTC is 12:00 in the operating timezone.
	if body.Time != "2026-08-24 12:00:00" {
		t.Fatalf("time = %s", body.Time)
	}
}
