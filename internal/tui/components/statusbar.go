package components

import (
	"strings"

	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// statusKeys are the hints on the left of the status bar. The key letter
// is highlighted and the rest of the word follows it.
var statusKeys = []struct{ key, rest string }{
	{"r", "erun"},
	{"?", "help"},
	{"q", "uit"},
}

// RenderStatusBar renders the bottom bar: key hints on the left and info
// about the current projection on the right. busy prefixes a rerun note.
func RenderStatusBar(width int, info string, busy bool) string {
	t := theme.Active
	text := onSurface(t.TextMuted)
	hl := onSurface(t.Accent).Bold(true)

	hints := make([]string, len(statusKeys))
	for i, k := range statusKeys {
		hints[i] = hl.Render("["+k.key+"]") + text.Render(k.rest)
	}
	left := text.Render(" ") + strings.Join(hints, text.Render("  "))

	if busy {
		info = "reprojecting… " + info
	}
	right := text.Render(info + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(left + text.Render(strings.Repeat(" ", gap)) + right)
}
