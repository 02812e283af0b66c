package classify

import (
	"testing"

	"marketpulse/internal/domain"
)

func TestClassifyLocalTerm(t *testing.T) {
	t.Parallel()

	c := New(false)
	tag := c.Classify("RBI hikes repo rate by 25 bps", "")
	if tag != domain.TagMarketUpdate {
		t.Fatalf("expected market-update, got %s", tag)
	}
}

func TestClassifyGlobalBeatsStrictLocality(t *testing.T) {
	t.Parallel()

	c := New(true)
	tag := c.Classify("Fed holds rates steady", "")
	if tag != domain.TagGlobalImpact {
		t.Fatalf("expected global-impact, got %s", tag)
	}
}

func TestClassifyStrictLocalityRejects(t *testing.T) {
	t.Parallel()

	c := New(true)
	tag := c.Classify("Local bakery wins award", "")
	if tag != domain.TagRejected {
		t.Fatalf("expected rejected, got %s", tag)
	}
}

func TestClassifyForeignMarketRejected(t *testing.T) {
	t.Parallel()

	c := New(false)
	tag := c.Classify("Dow Jones closes at record high", "")
	if tag != domain.TagRejected {
		t.Fatalf("expected rejected, got %s", tag)
	}
}

func TestClassifyForeignWithLocalTermAccepted(t *testing.T) {
	t.Parallel()

	c := New(false)
	tag := c.Classify("Nasdaq rally lifts Nifty IT stocks", "")
	if tag != domain.TagMarketUpdate {
		t.Fatalf("expected market-update, got %s", tag)
	}
}

func TestClassifyCountryInBody(t *testing.T) {
	t.Parallel()

	c := New(false)
	tag := c.Classify("Steel demand to double by 2030", "Analysts expect India to lead consumption growth.")
	if tag != domain.TagMarketUpdate {
		t.Fatalf("expected market-update, got %s", tag)
	}
}

func TestClassifyNoSignalRejected(t *testing.T) {
	t.Parallel()

	c := New(false)
	tag := c.Classify("Celebrity opens new restaurant", "A quiet ribbon cutting.")
	if tag != domain.TagRejected {
		t.Fatalf("expected rejected, got %s", tag)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	c := New(true)
	title := "OPEC weighs output cut as crude slides"
	body := "Brent futures fell sharply."

	first := c.Classify(title, body)
	for i := 0; i < 50; i++ {
		if got := c.Classify(title, body); got != first {
			t.Fatalf("classification changed between runs: %s vs %s", first, got)
		}
	}
	if first != domain.TagGlobalImpact {
		t.Fatalf("expected global-impact, got %s", first)
	}
}
