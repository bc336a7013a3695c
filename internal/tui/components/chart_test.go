package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func TestResample(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := Resample(values, 4)
	want := []float64{0, 3, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("Resample = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Resample = %v, want %v", got, want)
		}
	}
	if short := Resample(values[:3], 10); len(short) != 3 {
		t.Fatalf("short series resampled to %d points", len(short))
	}
}

func TestBandChart(t *testing.T) {
	theme.SetActive("flexoki-dark")

	bands := make([]model.WeekBand, 52)
	for w := range bands {
		v := float64(w * 100)
		bands[w] = model.WeekBand{Week: w, P10: v - 50, P50: v, P90: v + 50, Mean: v}
	}

	out := BandChart(bands, theme.Active.Green, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("BandChart rendered %d lines, want 3", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 40 {
			t.Errorf("line %d width = %d, want 40: %q", i, w, l)
		}
	}
	if !strings.Contains(lines[1], "£5.1K") {
		t.Errorf("median row missing final value: %q", lines[1])
	}
	if BandChart(nil, theme.Active.Green, 40) != "" {
		t.Error("empty bands should render nothing")
	}
}

func TestHistogramChart(t *testing.T) {
	theme.SetActive("flexoki-dark")

	bins := []model.Bin{
		{Lo: 2000, Hi: 2500, Count: 3},
		{Lo: 2500, Hi: 3000, Count: 12},
		{Lo: 3000, Hi: 3500, Count: 5},
	}
	out := Histogram(bins, theme.Active.Blue, 40, 8)
	if !strings.Contains(out, "2.0K") {
		t.Errorf("histogram missing first bin label:\n%s", out)
	}
	if strings.Contains(out, "£") {
		t.Errorf("axis labels should not carry the currency symbol:\n%s", out)
	}
}

func TestColorForRisk(t *testing.T) {
	theme.SetActive("flexoki-dark")
	th := theme.Active

	tests := []struct {
		p    float64
		want lipgloss.Color
	}{
		{0, th.Green},
		{0.1, th.Yellow},
		{0.3, th.Orange},
		{0.9, th.Red},
	}
	for _, tt := range tests {
		if got := ColorForRisk(tt.p); got != tt.want {
			t.Errorf("ColorForRisk(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
