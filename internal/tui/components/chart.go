package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// eighths are the partial block glyphs, empty through full.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// level maps v within [lo, lo+span] onto 0..steps, clamped.
func level(v, lo, span float64, steps int) int {
	if span <= 0 {
		return 0
	}
	i := int((v - lo) / span * float64(steps))
	return min(max(i, 0), steps)
}

// Sparkline renders values as one row of blocks scaled between lo and hi.
// Values outside the range are clamped.
func Sparkline(values []float64, lo, hi float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	runes := make([]rune, len(values))
	for i, v := range values {
		// Skip the blank glyph so the floor of the range stays visible.
		runes[i] = eighths[1+level(v, lo, hi-lo, len(eighths)-2)]
	}
	style := lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface)
	return style.Render(string(runes))
}

// Resample picks width evenly spaced points from values, keeping the first
// and last. Shorter series are returned unchanged.
func Resample(values []float64, width int) []float64 {
	n := len(values)
	if width <= 0 || n <= width {
		return values
	}
	if width == 1 {
		return []float64{values[n-1]}
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = values[i*(n-1)/(width-1)]
	}
	return out
}

// BandChart renders the P90, median and P10 of a weekly series as three
// sparklines sharing one scale, each labelled with its final value.
func BandChart(bands []model.WeekBand, color lipgloss.Color, width int) string {
	if len(bands) == 0 {
		return ""
	}
	t := theme.Active

	p10 := make([]float64, len(bands))
	p50 := make([]float64, len(bands))
	p90 := make([]float64, len(bands))
	lo, hi := bands[0].P10, bands[0].P90
	for i, b := range bands {
		p10[i], p50[i], p90[i] = b.P10, b.P50, b.P90
		lo = math.Min(lo, b.P10)
		hi = math.Max(hi, b.P90)
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	last := bands[len(bands)-1]
	rows := []struct {
		label  string
		values []float64
		final  float64
		color  lipgloss.Color
	}{
		{"P90", p90, last.P90, t.TextMuted},
		{"P50", p50, last.P50, color},
		{"P10", p10, last.P10, t.TextMuted},
	}

	finalW := 0
	for _, r := range rows {
		finalW = max(finalW, lipgloss.Width(cli.FormatMoneyShort(r.final)))
	}
	sparkW := width - 4 - finalW - 2
	if sparkW < 8 {
		sparkW = 8
	}

	var b strings.Builder
	for i, r := range rows {
		b.WriteString(labelStyle.Render(r.label + " "))
		b.WriteString(Sparkline(Resample(r.values, sparkW), lo, hi, r.color))
		b.WriteString(space.Render("  "))
		final := cli.FormatMoneyShort(r.final)
		b.WriteString(space.Render(strings.Repeat(" ", finalW-lipgloss.Width(final))))
		b.WriteString(valueStyle.Render(final))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// axisMoney drops the currency symbol so axis labels stay single-byte.
func axisMoney(v float64) string {
	return strings.Replace(cli.FormatMoneyShort(v), cli.Currency, "", 1)
}

// Histogram renders bins as vertical bars over a count axis, labelling the
// lowest, middle and highest bin edges underneath. Narrow or short areas
// fall back to a sparkline.
func Histogram(bins []model.Bin, color lipgloss.Color, width, height int) string {
	if len(bins) == 0 {
		return ""
	}
	counts := make([]float64, len(bins))
	for i, bin := range bins {
		counts[i] = float64(bin.Count)
	}
	peak := maxOf(counts)
	if width < 15 || height < 3 {
		return Sparkline(counts, 0, peak, color)
	}

	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	step := max(niceStep(max(peak, 1)), 1)
	top := math.Ceil(max(peak, 1)/step) * step
	topLabel := cli.FormatNumber(int64(top))
	midLabel := cli.FormatNumber(int64(top / 2))
	axisW := max(len(topLabel), 3) + 1

	plotW := width - axisW - 1
	n := len(counts)
	if n > plotW {
		counts = Resample(counts, plotW)
		n = len(counts)
	}
	gap := 1
	barW := (plotW - (n - 1)) / n
	if barW < 1 {
		gap, barW = 0, plotW/n
	}
	barW = min(barW, 6)
	plotLen := n*barW + (n-1)*gap

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := ""
		switch row {
		case height:
			label = topLabel
		case (height + 1) / 2:
			label = midLabel
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", axisW, label)))

		rowLo := top * float64(row-1) / float64(height)
		cell := top / float64(height)
		for i, c := range counts {
			if i > 0 && gap > 0 {
				b.WriteString(bg.Render(" "))
			}
			glyph := eighths[level(c, rowLo, cell, len(eighths)-1)]
			b.WriteString(barStyle.Render(strings.Repeat(string(glyph), barW)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└", axisW, "0")))
	b.WriteString(axisStyle.Render(strings.Repeat("─", plotLen)))
	b.WriteString("\n")
	b.WriteString(bg.Render(strings.Repeat(" ", axisW+1)))
	b.WriteString(axisStyle.Render(edgeLabels(bins, plotLen)))
	return b.String()
}

// edgeLabels spreads the low, middle and high bin edges across w columns,
// dropping the middle one when they would collide.
func edgeLabels(bins []model.Bin, w int) string {
	lo, hi := bins[0].Lo, bins[len(bins)-1].Hi
	left, mid, right := axisMoney(lo), axisMoney((lo+hi)/2), axisMoney(hi)

	line := []rune(strings.Repeat(" ", w))
	put := func(s string, at int) {
		for i, r := range []rune(s) {
			if at+i >= 0 && at+i < w {
				line[at+i] = r
			}
		}
	}
	put(left, 0)
	midAt := w/2 - len(mid)/2
	if midAt > len(left) && midAt+len(mid) < w-len(right) {
		put(mid, midAt)
	}
	if w-len(right) > len(left) {
		put(right, w-len(right))
	}
	return strings.TrimRight(string(line), " ")
}

// niceStep picks a 1, 2 or 5 times power-of-ten step giving about five ticks.
func niceStep(peak float64) float64 {
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch r := rough / base; {
	case r < 1.5:
		return base
	case r < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		m = max(m, v)
	}
	return m
}
