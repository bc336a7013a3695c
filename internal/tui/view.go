package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
)

// surface is a foreground style on the card surface color.
func surface(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(theme.Active.Surface)
}

// View implements tea.Model.
func (a App) View() string {
	switch {
	case a.width == 0:
		return ""
	case a.width < minTerminalWidth:
		return a.viewTooNarrow()
	case a.needSetup && a.setupForm != nil:
		return a.setupForm.View()
	case !a.loaded:
		return a.viewLoading()
	case a.showHelp:
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) viewTooNarrow() string {
	h := max(a.height, minContentHeight)
	msg := fmt.Sprintf("\n  fincast needs %d columns; this terminal has %d.\n  Widen the window to continue.\n",
		minTerminalWidth, a.width)
	return fitHeight(msg, h)
}

// centered draws body in an accent-bordered card in the middle of the screen.
func (a App) centered(body string, padV, padH int) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(padV, padH).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	muted := surface(t.TextMuted)
	count := surface(t.TextPrimary)

	pct := 0.0
	if a.progressMax > 0 {
		pct = float64(a.progress) / float64(a.progressMax)
	}
	barW := min(max(a.width-30, 20), 40)

	lines := []string{
		surface(t.AccentBright).Bold(true).Render("◈ fincast") + muted.Render(" · Monte Carlo balance projection"),
		"",
		surface(t.Accent).Render(a.spinner.View()) +
			muted.Render(fmt.Sprintf(" Simulating %s over %d weeks", a.scenario.Name, a.scenario.Weeks)),
		"",
		components.ProgressBar(pct, barW),
		count.Render(cli.FormatNumber(int64(a.progress))) + muted.Render(" / ") +
			count.Render(cli.FormatNumber(int64(a.progressMax))) + muted.Render(" runs"),
	}
	if a.setupErr != nil {
		lines = append(lines, "", surface(t.Orange).Render("Setup not saved: "+a.setupErr.Error()))
	}
	return a.centered(strings.Join(lines, "\n"), 2, 4)
}

type keyHelp struct{ keys, desc string }

var helpSections = []struct {
	title    string
	bindings []keyHelp
}{
	{"Navigation", []keyHelp{
		{"o a t s", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Select series or field"},
	}},
	{"Actions", []keyHelp{
		{"r", "Rerun with a fresh seed"},
		{"Enter", "Edit scenario field"},
		{"Esc", "Cancel edit"},
		{"w", "Write scenario file"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := surface(t.Cyan).Bold(true)
	descStyle := surface(t.TextMuted)
	sectionStyle := surface(t.Accent).Bold(true)

	var b strings.Builder
	b.WriteString(surface(t.AccentBright).Bold(true).Render("◈ Keyboard Shortcuts"))
	for _, sec := range helpSections {
		b.WriteString("\n\n" + sectionStyle.Render(sec.title))
		for _, kh := range sec.bindings {
			fmt.Fprintf(&b, "\n  %s  %s", keyStyle.Render(fmt.Sprintf("%-10s", kh.keys)), descStyle.Render(kh.desc))
		}
	}
	b.WriteString("\n\n" + surface(t.TextDim).Render("Press any key to close"))
	return a.centered(b.String(), 1, 3)
}

// header is the tab bar over a pill naming the scenario, run count and
// projected date range.
func (a App) header() string {
	t := theme.Active
	dim := surface(t.TextDim)
	accent := surface(t.Accent).Bold(true)

	parts := []string{accent.Render(a.scenario.Name)}
	if a.result != nil {
		res := a.result.Result
		parts = append(parts,
			accent.Render(cli.FormatNumber(int64(res.RunCount()))+" runs"),
			accent.Render(cli.FormatDateRange(a.startDate, res.Weeks())))
	}
	pill := dim.Render(" ") + strings.Join(parts, dim.Render(" │ ")) + dim.Render(" ")

	return components.RenderTabBar(a.activeTab, a.width) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(a.width).Render(pill)
}

func (a App) statusLine() string {
	info := fmt.Sprintf("%.1fs", a.elapsed.Seconds())
	if a.result != nil {
		info = fmt.Sprintf("seed %d · %s", a.result.Result.Seed, info)
	}
	if a.running && a.progressMax > 0 {
		info = fmt.Sprintf("%s %d%% · %s", a.spinner.View(), a.progress*100/a.progressMax, info)
	}
	return components.RenderStatusBar(a.width, info, a.running)
}

func (a App) tabContent(cw int) string {
	if a.result == nil && a.err != nil && a.activeTab != tabScenario {
		return a.renderError(cw)
	}
	switch a.activeTab {
	case tabAccounts:
		return a.renderAccountsTab(cw)
	case tabTrajectories:
		return a.renderTrajectoriesTab(cw)
	case tabScenario:
		return a.renderScenarioTab(cw)
	default:
		return a.renderOverviewTab(cw)
	}
}

// viewMain stacks header, tab content and status bar to exactly the
// terminal size, centering content wider terminals can't fill.
func (a App) viewMain() string {
	bg := lipgloss.WithWhitespaceBackground(theme.Active.Background)
	header, status := a.header(), a.statusLine()

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(status), minContentHeight)
	cw := a.contentWidth()

	content := fillLines(fitHeight(a.tabContent(cw), contentH), cw)
	content = lipgloss.Place(a.width, contentH, lipgloss.Center, lipgloss.Top, content, bg)

	out := lipgloss.JoinVertical(lipgloss.Left, header, content, status)
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, out, bg)
}

func (a App) renderError(cw int) string {
	t := theme.Active
	body := surface(t.Red).Render(a.err.Error()) + "\n\n" +
		surface(t.TextMuted).Render("Fix the scenario on the Scenario tab [s] or press [r] to retry.")
	return components.ContentCard("Projection failed", body, cw)
}

// fitHeight cuts or pads s to exactly h lines.
func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		return strings.Join(lines[:h], "\n")
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLines pads every line to w columns with the theme background.
func fillLines(s string, w int) string {
	bg := lipgloss.WithWhitespaceBackground(theme.Active.Background)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, l, bg)
	}
	return strings.Join(lines, "\n")
}

// truncStr shortens s to limit runes, ending in an ellipsis when cut.
func truncStr(s string, limit int) string {
	r := []rune(s)
	switch {
	case limit <= 0:
		return ""
	case len(r) <= limit:
		return s
	}
	return string(r[:limit-1]) + "…"
}
