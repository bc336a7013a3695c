package cli

import (
	"strings"

	"github.com/theirongolddev/fincast/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	barStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	markStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	gainStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	lossStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" draws a separator. The first column is left-aligned
// and the rest are right-aligned.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		fit := func(row []string) {
			for i := 0; i < len(row) && i < cols; i++ {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
		fit(t.Headers)
		for _, row := range t.Rows {
			if !isSeparator(row) {
				fit(row)
			}
		}
	}

	rule := func(left, mid, right string) string {
		segs := make([]string, cols)
		for i, w := range widths {
			segs[i] = strings.Repeat("─", w+2)
		}
		return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
	}
	line := func(row []string, style lipgloss.Style, header bool) string {
		bar := dimStyle.Render("│")
		var b strings.Builder
		b.WriteString(bar)
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if header || i == 0 {
				cell = padRight(cell, w)
			} else {
				cell = padLeft(cell, w)
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(bar)
		}
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, headerStyle, true))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, valueStyle, false))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

func padRight(s string, w int) string {
	return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
}

func padLeft(s string, w int) string {
	return strings.Repeat(" ", max(w-lipgloss.Width(s), 0)) + s
}

// RenderSparkline generates a unicode block sparkline, scaled between the
// series minimum and maximum. A flat series renders at the lowest block.
func RenderSparkline(values []float64) string {
	const blocks = "▁▂▃▄▅▆▇█"
	glyphs := []rune(blocks)
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(glyphs)-1))
		}
		out[i] = glyphs[min(max(idx, 0), len(glyphs)-1)]
	}
	return string(out)
}

// RenderDelta styles a money delta green when it is a gain and red when a loss.
func RenderDelta(current, previous float64) string {
	s := FormatMoneyDelta(current, previous)
	if current < previous {
		return lossStyle.Render(s)
	}
	return gainStyle.Render(s)
}

// Mark labels a reference value on a histogram, such as the starting total.
type Mark struct {
	Label string
	Value float64
}

// RenderHistogram renders bins as horizontal bars, one row per bin, with
// each mark noted beside the bin that contains it.
func RenderHistogram(title string, bins []model.Bin, maxWidth int, marks ...Mark) string {
	if len(bins) == 0 {
		return ""
	}
	if maxWidth < 1 {
		maxWidth = 40
	}

	maxCount := 0
	for _, bin := range bins {
		if bin.Count > maxCount {
			maxCount = bin.Count
		}
	}

	labels := make([]string, len(bins))
	labelWidth := 0
	for i, bin := range bins {
		labels[i] = FormatMoneyShort(bin.Lo) + " – " + FormatMoneyShort(bin.Hi)
		if n := lipgloss.Width(labels[i]); n > labelWidth {
			labelWidth = n
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n")
	}

	for i, bin := range bins {
		barLen := 0
		if maxCount > 0 {
			barLen = int(float64(bin.Count) / float64(maxCount) * float64(maxWidth))
		}
		if bin.Count > 0 && barLen == 0 {
			barLen = 1
		}

		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(padLeft(labels[i], labelWidth)))
		b.WriteString(dimStyle.Render(" │"))
		b.WriteString(barStyle.Render(strings.Repeat("█", barLen)))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(FormatNumber(int64(bin.Count))))

		for _, m := range marks {
			if binContains(bins, i, m.Value) {
				b.WriteString(markStyle.Render("  ◀ " + m.Label))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// binContains treats bins as half-open except the last, which includes its upper edge.
func binContains(bins []model.Bin, i int, v float64) bool {
	bin := bins[i]
	if i == len(bins)-1 {
		return v >= bin.Lo && v <= bin.Hi
	}
	return v >= bin.Lo && v < bin.Hi
}
