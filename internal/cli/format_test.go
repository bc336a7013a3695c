package cli

import (
	"math"
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "£0.00"},
		{3100, "£3,100.00"},
		{1234.567, "£1,234.57"},
		{0.005, "£0.01"},
		{-12.3, "-£12.30"},
		{-0.001, "£0.00"},
		{1234567.891, "£1,234,567.89"},
		{math.NaN(), "n/a"},
		{math.Inf(-1), "-£∞"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyWholeAndShort(t *testing.T) {
	if got := FormatMoneyWhole(1234.5); got != "£1,235" {
		t.Errorf("FormatMoneyWhole(1234.5) = %q", got)
	}
	if got := FormatMoneyWhole(-99.4); got != "-£99" {
		t.Errorf("FormatMoneyWhole(-99.4) = %q", got)
	}

	short := []struct {
		in   float64
		want string
	}{
		{950, "£950"},
		{1234, "£1.2K"},
		{-2500, "-£2.5K"},
		{2_500_000, "£2.5M"},
	}
	for _, tt := range short {
		if got := FormatMoneyShort(tt.in); got != tt.want {
			t.Errorf("FormatMoneyShort(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyDelta(t *testing.T) {
	if got := FormatMoneyDelta(3500, 3100); got != "+£400.00" {
		t.Errorf("gain = %q", got)
	}
	if got := FormatMoneyDelta(3000, 3100.5); got != "-£100.50" {
		t.Errorf("loss = %q", got)
	}
	if got := FormatMoneyDelta(10, 10); got != "+£0.00" {
		t.Errorf("no change = %q", got)
	}
}

func TestFormatMeanStd(t *testing.T) {
	if got := FormatMeanStd(3412.4, 318.6); got != "£3,412 ± £319" {
		t.Errorf("FormatMeanStd = %q", got)
	}
}

func TestFormatNumberAndPercent(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-1000); got != "-1,000" {
		t.Errorf("FormatNumber(-1000) = %q", got)
	}
	if got := FormatPercent(0.1234); got != "12.3%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

func TestFormatDateRange(t *testing.T) {
	start := time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC)
	if got := FormatDateRange(start, 52); got != "06/01/2026 - 05/01/2027" {
		t.Errorf("FormatDateRange = %q", got)
	}
	if got := FormatDate(ProjectionEnd(start, 1)); got != "13/01/2026" {
		t.Errorf("one week end = %q", got)
	}
}
