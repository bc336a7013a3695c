package tui

import (
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// accountRow is one line of the accounts table.
type accountRow struct {
	name  string
	start float64
	stats model.DistributionStats
	color lipgloss.Color
}

func (a App) accountRows() []accountRow {
	t := theme.Active
	sum := a.result.Summary
	s := a.result.Result.Scenario

	rows := make([]accountRow, 0, len(model.Accounts)+2)
	for _, acct := range model.Accounts {
		rows = append(rows, accountRow{acct.String(), s.InitialBalance(acct), sum.Accounts[acct], t.AccountColor(acct)})
	}
	rows = append(rows,
		accountRow{"Liquid", s.InitialLiquid(), sum.Liquid, t.Cyan},
		accountRow{"Total", s.InitialTotal(), sum.Total, t.AccentBright},
	)
	return rows
}

func (a App) renderAccountsTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const moneyW = 11
	const pctW = 8
	nameW := 10

	type column struct {
		title string
		value func(r accountRow) string
		width int
	}
	columns := []column{
		{"Start", func(r accountRow) string { return cli.FormatMoneyWhole(r.start) }, moneyW},
		{"Mean", func(r accountRow) string { return cli.FormatMoneyWhole(r.stats.Mean) }, moneyW},
		{"± SD", func(r accountRow) string { return cli.FormatMoneyWhole(r.stats.StdDev) }, moneyW},
		{"P10", func(r accountRow) string { return cli.FormatMoneyWhole(r.stats.P10) }, moneyW},
		{"P50", func(r accountRow) string { return cli.FormatMoneyWhole(r.stats.P50) }, moneyW},
		{"P90", func(r accountRow) string { return cli.FormatMoneyWhole(r.stats.P90) }, moneyW},
		{"Below", func(r accountRow) string { return cli.FormatPercent(r.stats.FractionBelow) }, pctW},
	}
	if a.isCompactLayout() {
		columns = []column{columns[1], columns[2], columns[4], columns[6]}
	}

	used := 0
	for _, c := range columns {
		used += c.width + 1
	}
	if innerW-used > nameW {
		nameW = innerW - used
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(padCell("Account", nameW, false)))
	for _, c := range columns {
		body.WriteString(headerStyle.Render(" " + padCell(c.title, c.width, true)))
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	for i, r := range a.accountRows() {
		if i == len(model.Accounts) {
			body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
			body.WriteString("\n")
		}
		nameStyle := lipgloss.NewStyle().Foreground(r.color).Background(t.Surface).Bold(true)
		body.WriteString(nameStyle.Render(padCell(r.name, nameW, false)))
		for _, c := range columns {
			style := rowStyle
			if c.title == "Below" {
				style = lipgloss.NewStyle().Foreground(components.ColorForRisk(r.stats.FractionBelow)).Background(t.Surface)
			}
			body.WriteString(style.Render(" " + padCell(c.value(r), c.width, true)))
		}
		body.WriteString("\n")
	}
	body.WriteString(mutedStyle.Render("Below: runs ending under the starting balance (liquid: under £0)"))

	var b strings.Builder
	b.WriteString(components.ContentCard("Final Balances", body.String(), cw))
	b.WriteString("\n")

	// Per-account histograms, two per row
	perRow := 2
	if a.isCompactLayout() {
		perRow = 1
	}
	widths := components.LayoutRow(cw, perRow)
	var row []string
	for _, acct := range model.Accounts {
		st := a.result.Summary.Accounts[acct]
		w := widths[len(row)]
		row = append(row, components.ContentCard(
			acct.String()+"  "+cli.FormatMeanStd(st.Mean, st.StdDev),
			components.Histogram(a.accountBins[acct], t.AccountColor(acct), components.CardInnerWidth(w), 6),
			w,
		))
		if len(row) == perRow {
			b.WriteString(components.CardRow(row))
			b.WriteString("\n")
			row = nil
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// padCell pads s to w display columns. Money strings carry multi-byte
// runes, so fmt width verbs would misalign them.
func padCell(s string, w int, right bool) string {
	s = truncStr(s, w)
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

