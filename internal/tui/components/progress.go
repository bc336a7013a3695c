package components

import (
	"fmt"

	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders ensemble progress as a gradient bar and percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	bar := newBar(width, progress.WithGradient(string(t.Cyan), string(t.AccentBright)))
	return bar.ViewAs(pct) + onSurface(t.Surface).Render(" ") +
		onSurface(t.Accent).Bold(true).Render(fmt.Sprintf("%.0f%%", pct*100))
}

// newBar is a bubbles progress bar without its built-in percentage,
// emptied in the dim text color.
func newBar(width int, fill progress.Option) progress.Model {
	bar := progress.New(fill, progress.WithWidth(width), progress.WithoutPercentage())
	bar.EmptyColor = string(theme.Active.TextDim)
	return bar
}

// ColorForRisk returns green/yellow/orange/red for the probability of
// ending below a threshold.
func ColorForRisk(p float64) lipgloss.Color {
	t := theme.Active
	switch {
	case p >= 0.5:
		return t.Red
	case p >= 0.25:
		return t.Orange
	case p >= 0.1:
		return t.Yellow
	default:
		return t.Green
	}
}

// RiskBar renders a labeled bar for a shortfall probability, colored by
// ColorForRisk.
func RiskBar(label string, p float64, labelW, barWidth int) string {
	t := theme.Active
	p = clamp01(p)
	color := ColorForRisk(p)
	bar := newBar(barWidth, progress.WithSolidFill(string(color)))
	space := onSurface(t.Surface).Render(" ")

	return onSurface(t.TextMuted).Render(fmt.Sprintf("%-*s", labelW, label)) + space +
		bar.ViewAs(p) + space +
		onSurface(color).Bold(true).Render(fmt.Sprintf("%5.1f%%", p*100))
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
