// Package components provides reusable TUI widgets for the fincast dashboard.
package components

import (
	"strings"

	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tone colors the detail line of a metric card.
type Tone int

// Detail tones.
const (
	ToneNeutral Tone = iota
	ToneGood
	ToneBad
)

// Metric is one headline number shown in a card.
type Metric struct {
	Label  string
	Value  string
	Detail string
	Tone   Tone
}

// LayoutRow splits total into n widths summing to total, giving the
// remainder to the leftmost items.
func LayoutRow(total, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = total / n
		if i < total%n {
			widths[i]++
		}
	}
	return widths
}

// minCardWidth keeps very narrow terminals from collapsing cards.
const minCardWidth = 10

// frame is the rounded surface shared by every card. outerWidth includes
// the border.
func frame(outerWidth int) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, minCardWidth)).
		Padding(0, 1)
}

// onSurface returns a style with the given foreground on the card surface.
func onSurface(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(theme.Active.Surface)
}

func (tone Tone) color() lipgloss.Color {
	t := theme.Active
	switch tone {
	case ToneGood:
		return t.Gain()
	case ToneBad:
		return t.Loss()
	default:
		return t.TextDim
	}
}

// MetricCard renders a label, a bold value and an optional toned detail.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active
	lines := []string{
		onSurface(t.TextMuted).Render(m.Label),
		onSurface(t.TextPrimary).Bold(true).Render(m.Value),
	}
	if m.Detail != "" {
		lines = append(lines, onSurface(m.Tone.color()).Render(m.Detail))
	}
	return frame(outerWidth).Render(strings.Join(lines, "\n"))
}

// MetricCardRow lays metric cards side by side across exactly totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	cards := make([]string, len(metrics))
	for i, w := range LayoutRow(totalWidth, len(metrics)) {
		cards[i] = MetricCard(metrics[i], w)
	}
	return CardRow(cards)
}

// ContentCard renders body in a card, under a bold title when one is given.
func ContentCard(title, body string, outerWidth int) string {
	if title != "" {
		body = onSurface(theme.Active.TextMuted).Bold(true).Render(title) + "\n" + body
	}
	return frame(outerWidth).Render(body)
}

// CardRow joins rendered cards left to right, filling under the shorter
// ones with the theme background.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	height := 0
	for _, c := range cards {
		height = max(height, lipgloss.Height(c))
	}
	fill := lipgloss.WithWhitespaceBackground(theme.Active.Background)
	placed := make([]string, len(cards))
	for i, c := range cards {
		placed[i] = lipgloss.Place(lipgloss.Width(c), height, lipgloss.Left, lipgloss.Top, c, fill)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, placed...)
}

// CardInnerWidth is the text width left inside a card of outerWidth once
// border and padding are taken.
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, minCardWidth)
}
