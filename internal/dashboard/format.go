package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"PriceFeed/internal/calculator"
)

const timestampLayout = "02/01/2006 15:04:05"

// FormatUSD renders a price as $1,234.50.
func FormatUSD(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatExportValue renders a price for the CSV export as $1.234,50.
func FormatExportValue(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#.###,##", -v)
	}
	return "$" + humanize.FormatFloat("#.###,##", v)
}

// FormatTimestamp renders t in UTC as DD/MM/YYYY HH:MM:SS.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// FormatPercent renders a signed percentage, or "n/a" when undefined.
func FormatPercent(m calculator.Maybe) string {
	if !m.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", m.Value)
}

// DeltaCaption is the caption under the current price.
func DeltaCaption(delta calculator.Maybe) string {
	if !delta.Valid {
		return "no reading 24h ago"
	}
	return fmt.Sprintf("%.2f%% (vs 24h ago)", delta.Value)
}

// TrendSentence describes the 24h direction of the price.
func TrendSentence(base string, delta calculator.Maybe) string {
	if !delta.Valid {
		return ""
	}
	var b strings.Builder
	if base == "" {
		base = "the asset"
	}
	b.WriteString(fmt.Sprintf("The price of %s is ", base))
	if calculator.Trend(delta.Value) == "up" {
		b.WriteString("up")
	} else {
		b.WriteString("down")
	}
	b.WriteString(" over the last 24h.")
	return b.String()
}

// FormatBand renders a 0..1 band position as a percentage.
func FormatBand(m calculator.Maybe) string {
	if !m.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", m.Value*100)
}

// FormatNumber renders an undefined-aware plain number.
func FormatNumber(m calculator.Maybe) string {
	if !m.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Value)
}
