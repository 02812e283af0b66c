package usecase

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"marketpulse/internal/domain"
	"marketpulse/internal/join"
)

// formatNews renders one admitted headline as a breaking-news bullet.
func formatNews(item domain.CandidateItem) string {
	return fmt.Sprintf("🚨 <b>%s</b>\n<i>Source:</i> %s",
		html.EscapeString(collapseSpaces(item.Title)),
		sourceLabel(item))
}

func sourceLabel(item domain.CandidateItem) string {
	if item.URL != "" {
		if parsed, err := url.Parse(item.URL); err == nil && parsed.Host != "" {
			return strings.TrimPrefix(parsed.Host, "www.")
		}
	}
	return item.SourceID
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatIndices renders index lines under a bold heading; symbols that
// failed to fetch render as NA.
func formatIndices(heading string, lines []indexLine) string {
	out := []string{fmt.Sprintf("<b>%s</b>", heading)}
	for _, line := range lines {
		if line.quote == nil {
			out = append(out, fmt.Sprintf("%s: NA", line.name))
			continue
		}
		out = append(out, fmt.Sprintf("%s: %.2f (%s %.2f%%)",
			line.name, line.quote.Price, arrow(line.quote.ChangePct), line.quote.ChangePct))
	}
	return strings.Join(out, "\n")
}

// formatFlows renders the FII/DII cash line, or its no-data fallback.
func formatFlows(snap domain.FlowSnapshot, ok bool) string {
	if !ok {
		return "<b>💰 FII/DII</b>\nData not available today."
	}
	return fmt.Sprintf("<b>💰 FII/DII (Cash)</b>\nFII: %s ₹%.2f Cr | DII: %s ₹%.2f Cr",
		arrow(snap.FII), abs(snap.FII), arrow(snap.DII), abs(snap.DII))
}

// formatIPO renders the joined calendar plus the raw premium table. Both
// sides degrade to a "not available" bullet; the digest is always rendered.
func formatIPO(joined []join.Joined, premiums []domain.PremiumQuote) string {
	out := []string{"<b>🧾 IPO Update</b>"}

	if len(joined) > 0 {
		out = append(out, "<u>Upcoming/Mainboard</u>")
		for _, row := range joined {
			line := fmt.Sprintf("• %s: %s–%s | %s | Lot: %s",
				html.EscapeString(row.Listing.Company),
				row.Listing.OpenDate, row.Listing.CloseDate,
				row.Listing.PriceBand, row.Listing.LotSize)
			if row.Premium != nil {
				line += fmt.Sprintf(" | GMP %s (Est. %s)", row.Premium.Premium, row.Premium.EstListing)
			}
			out = append(out, line)
		}
	} else {
		out = append(out, "• IPO calendar data not available.")
	}

	if len(premiums) > 0 {
		out = append(out, "<u>Live GMP</u>")
		for _, q := range premiums {
			out = append(out, fmt.Sprintf("• %s: GMP %s | Est. %s",
				html.EscapeString(q.CompanyRaw), q.Premium, q.EstListing))
		}
	} else {
		out = append(out, "• GMP data not available.")
	}

	return strings.Join(out, "\n")
}

func arrow(v float64) string {
	if v >= 0 {
		return "🔼"
	}
	return "🔻"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
