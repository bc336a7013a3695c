package cli

import (
	"strings"
	"testing"

	"github.com/theirongolddev/fincast/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func plainOutput(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.TrueColor) })
}

func TestRenderSparkline_MinMax(t *testing.T) {
	got := RenderSparkline([]float64{-100, 0, 100})
	if got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want ▁▄█", got)
	}
	if flat := RenderSparkline([]float64{5, 5, 5}); flat != "▁▁▁" {
		t.Fatalf("flat sparkline = %q", flat)
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("empty sparkline should be empty")
	}
}

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	plainOutput(t)

	out := RenderTable(Table{
		Headers: []string{"Account", "Mean"},
		Rows: [][]string{
			{"ISA", "£1,600.00"},
			{"---"},
			{"Total", "£12.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("table has %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != width {
			t.Errorf("line %d width = %d, want %d: %q", i, lipgloss.Width(l), width, l)
		}
	}
	if !strings.Contains(out, "│    £12.00 │") {
		t.Errorf("numeric column not right-aligned:\n%s", out)
	}
}

func TestRenderHistogram(t *testing.T) {
	plainOutput(t)

	bins := []model.Bin{
		{Lo: 0, Hi: 1000, Count: 2},
		{Lo: 1000, Hi: 2000, Count: 8},
		{Lo: 2000, Hi: 3000, Count: 0},
	}
	out := RenderHistogram("Total", bins, 8, Mark{Label: "start", Value: 1500}, Mark{Label: "top", Value: 3000})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("histogram has %d lines, want 4:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Total") {
		t.Errorf("missing title: %q", lines[0])
	}
	if !strings.Contains(lines[2], "████████ 8") || !strings.Contains(lines[2], "◀ start") {
		t.Errorf("largest bin row = %q", lines[2])
	}
	if !strings.Contains(lines[1], "██ 2") {
		t.Errorf("small bin row = %q", lines[1])
	}
	if strings.Contains(lines[3], "█") || !strings.Contains(lines[3], "◀ top") {
		t.Errorf("empty last bin row = %q", lines[3])
	}
	if RenderHistogram("x", nil, 10) != "" {
		t.Error("no bins should render nothing")
	}
}
