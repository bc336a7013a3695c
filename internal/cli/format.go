// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Currency is the symbol prefixed to money values.
const Currency = "£"

// dateLayout is dd/mm/yyyy.
const dateLayout = "02/01/2006"

// FormatMoney formats a balance rounded to the penny with thousands separators.
// e.g., 1234.567 -> "£1,234.57", -12.3 -> "-£12.30"
func FormatMoney(v float64) string {
	if s, ok := formatNonFinite(v); ok {
		return s
	}

	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.')+1:]
	return sign + Currency + humanize.Comma(d.IntPart()) + "." + frac
}

// FormatMoneyWhole formats a balance rounded to whole pounds.
// e.g., 1234.5 -> "£1,235"
func FormatMoneyWhole(v float64) string {
	if s, ok := formatNonFinite(v); ok {
		return s
	}

	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + Currency + humanize.Comma(d.IntPart())
}

// FormatMoneyShort formats a balance with K/M suffixes for axis labels.
// e.g., 1234 -> "£1.2K", 2500000 -> "£2.5M", 950 -> "£950"
func FormatMoneyShort(v float64) string {
	if s, ok := formatNonFinite(v); ok {
		return s
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%s%s%.1fM", sign, Currency, v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%s%s%.1fK", sign, Currency, v/1_000)
	default:
		return fmt.Sprintf("%s%s%.0f", sign, Currency, v)
	}
}

// FormatMoneyDelta formats the signed difference between two balances.
func FormatMoneyDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return FormatMoney(delta)
}

// FormatMeanStd formats a mean and standard deviation in whole pounds.
// e.g., "£3,412 ± £318"
func FormatMeanStd(mean, stdev float64) string {
	return FormatMoneyWhole(mean) + " ± " + FormatMoneyWhole(stdev)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// ProjectionEnd returns the date a projection of the given length reaches.
func ProjectionEnd(start time.Time, weeks int) time.Time {
	return start.AddDate(0, 0, 7*weeks)
}

// FormatDate formats a date as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateRange formats the span covered by a projection.
// e.g., "06/01/2026 - 05/01/2027"
func FormatDateRange(start time.Time, weeks int) string {
	return FormatDate(start) + " - " + FormatDate(ProjectionEnd(start, weeks))
}

// FormatAge formats how long ago t was, e.g. "3 days ago".
func FormatAge(t time.Time) string {
	return humanize.Time(t)
}

func formatNonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "n/a", true
	case math.IsInf(v, 1):
		return Currency + "∞", true
	case math.IsInf(v, -1):
		return "-" + Currency + "∞", true
	}
	return "", false
}
