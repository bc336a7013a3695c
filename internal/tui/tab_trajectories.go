package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// seriesDef is one selectable weekly series.
type seriesDef struct {
	name    string
	series  pipeline.Series
	account model.Account
	single  bool // account is meaningful
}

func (d seriesDef) color(t theme.Theme) lipgloss.Color {
	if d.single {
		return t.AccountColor(d.account)
	}
	if d.name == "Liquid" {
		return t.Cyan
	}
	return t.AccentBright
}

var trajectorySeries = func() []seriesDef {
	defs := make([]seriesDef, 0, len(model.Accounts)+2)
	for _, acct := range model.Accounts {
		defs = append(defs, seriesDef{name: acct.String(), series: pipeline.AccountSeries(acct), account: acct, single: true})
	}
	return append(defs,
		seriesDef{name: "Liquid", series: pipeline.LiquidSeries},
		seriesDef{name: "Total", series: pipeline.TotalSeries},
	)
}()

// trajectoriesState tracks the selected series.
type trajectoriesState struct {
	cursor int
}

// bandStep picks a week step that keeps the band table to about a dozen rows.
func bandStep(weeks int) int {
	step := (weeks + 11) / 12
	if step < 1 {
		step = 1
	}
	return step
}

// bandRows returns the weeks shown in the band table, always including the last.
func bandRows(weeks, step int) []int {
	if weeks < 1 {
		return nil
	}
	var rows []int
	for w := 0; w < weeks; w += step {
		rows = append(rows, w)
	}
	if rows[len(rows)-1] != weeks-1 {
		rows = append(rows, weeks-1)
	}
	return rows
}

func (a App) renderTrajectoriesTab(cw int) string {
	t := theme.Active
	def := trajectorySeries[a.traj.cursor]
	bands := a.bands[a.traj.cursor]

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	space := lipgloss.NewStyle().Background(t.Surface)

	// Series selector
	selW := 22
	chartW := cw - selW
	if a.isCompactLayout() {
		selW, chartW = cw, cw
	}

	var sel strings.Builder
	for i, d := range trajectorySeries {
		swatch := lipgloss.NewStyle().Foreground(d.color(t)).Background(t.Surface).Render("■ ")
		if i == a.traj.cursor {
			swatch = lipgloss.NewStyle().Foreground(d.color(t)).Background(t.SurfaceBright).Render("■ ")
			line := markerStyle.Render("▸ ") + swatch + selectedStyle.Render(d.name)
			pad := components.CardInnerWidth(selW) - lipgloss.Width(line)
			if pad > 0 {
				line += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
			sel.WriteString(line)
		} else {
			sel.WriteString(space.Render("  ") + swatch + mutedStyle.Render(d.name))
		}
		if i < len(trajectorySeries)-1 {
			sel.WriteString("\n")
		}
	}
	sel.WriteString("\n\n")
	sel.WriteString(mutedStyle.Render("[j/k] select"))
	selCard := components.ContentCard("Series", sel.String(), selW)

	// Band chart
	innerW := components.CardInnerWidth(chartW)
	chart := components.BandChart(bands, def.color(t), innerW)
	chartCard := components.ContentCard(
		fmt.Sprintf("%s · weekly P10 / median / P90", def.name),
		chart,
		chartW,
	)

	var b strings.Builder
	if a.isCompactLayout() {
		b.WriteString(selCard)
		b.WriteString("\n")
		b.WriteString(chartCard)
	} else {
		b.WriteString(components.CardRow([]string{selCard, chartCard}))
	}
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Weekly Bands", a.renderBandTable(bands, components.CardInnerWidth(cw)), cw))

	return b.String()
}

func (a App) renderBandTable(bands []model.WeekBand, innerW int) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const weekW, dateW, moneyW = 6, 10, 12
	cols := []string{"P10", "Median", "P90", "Mean"}

	var b strings.Builder
	b.WriteString(headerStyle.Render(padCell("Week", weekW, false) + " " + padCell("Date", dateW, false)))
	for _, c := range cols {
		b.WriteString(headerStyle.Render(" " + padCell(c, moneyW, true)))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(innerW, weekW+dateW+1+len(cols)*(moneyW+1)))))

	for _, w := range bandRows(len(bands), bandStep(len(bands))) {
		band := bands[w]
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(padCell(fmt.Sprintf("%d", band.Week), weekW, false) + " "))
		b.WriteString(mutedStyle.Render(padCell(cli.FormatDate(a.startDate.AddDate(0, 0, 7*band.Week)), dateW, false)))
		for _, v := range []float64{band.P10, band.P50, band.P90, band.Mean} {
			b.WriteString(rowStyle.Render(" " + padCell(cli.FormatMoneyWhole(v), moneyW, true)))
		}
	}
	return b.String()
}
