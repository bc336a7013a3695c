package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// comparison is the baseline the overview measures the latest run against.
type comparison struct {
	label  string
	liquid float64
	total  float64
}

// baseline prefers the last stored projection of this scenario and falls
// back to the previous run of this session.
func (a App) baseline() (comparison, bool) {
	if a.result == nil {
		return comparison{}, false
	}
	if rec := a.result.Previous; rec != nil {
		return comparison{
			label:  "last stored run, " + cli.FormatAge(rec.CreatedAt),
			liquid: rec.Liquid.Mean,
			total:  rec.Total.Mean,
		}, true
	}
	if a.prevRun != nil {
		return comparison{
			label:  "previous run",
			liquid: a.prevRun.Liquid.Mean,
			total:  a.prevRun.Total.Mean,
		}, true
	}
	return comparison{}, false
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	sum := a.result.Summary
	var b strings.Builder

	// Row 1: Metric cards
	change := sum.TotalChange()
	changeTone := components.ToneGood
	if change < 0 {
		changeTone = components.ToneBad
	}
	riskTone := components.ToneNeutral
	if sum.Liquid.FractionBelow >= 0.1 {
		riskTone = components.ToneBad
	}

	cards := []components.Metric{
		{Label: "Liquid (current + savings)", Value: cli.FormatMoneyWhole(sum.Liquid.Mean), Detail: "± " + cli.FormatMoneyWhole(sum.Liquid.StdDev)},
		{Label: "Total", Value: cli.FormatMoneyWhole(sum.Total.Mean), Detail: "± " + cli.FormatMoneyWhole(sum.Total.StdDev)},
		{Label: "Change vs start", Value: cli.FormatMoneyDelta(sum.Total.Mean, sum.InitialTotal), Detail: "from " + cli.FormatMoneyWhole(sum.InitialTotal), Tone: changeTone},
		{Label: "Shortfall risk", Value: cli.FormatPercent(sum.Liquid.FractionBelow), Detail: "P(liquid < £0)", Tone: riskTone},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: total histogram + risk
	var histW, riskW int
	if a.isCompactLayout() {
		histW, riskW = cw, cw
	} else {
		histW = cw * 3 / 5
		riskW = cw - histW
	}

	histCard := components.ContentCard(
		fmt.Sprintf("Final Total Balance (%d bins)", len(a.totalBins)),
		components.Histogram(a.totalBins, t.Accent, components.CardInnerWidth(histW), 10),
		histW,
	)
	riskCard := components.ContentCard("Chance of Ending Below", a.renderRiskBody(components.CardInnerWidth(riskW)), riskW)

	if a.isCompactLayout() {
		b.WriteString(histCard)
		b.WriteString("\n")
		b.WriteString(riskCard)
	} else {
		b.WriteString(components.CardRow([]string{histCard, riskCard}))
	}

	return b.String()
}

func (a App) renderRiskBody(innerW int) string {
	t := theme.Active
	sum := a.result.Summary
	s := a.result.Result.Scenario

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	const labelW = 14
	barW := innerW - labelW - 8
	if barW < 6 {
		barW = 6
	}

	rows := []struct {
		label string
		p     float64
	}{
		{"Liquid < £0", sum.Liquid.FractionBelow},
		{"Total < start", sum.Total.FractionBelow},
	}
	for _, acct := range model.Accounts {
		rows = append(rows, struct {
			label string
			p     float64
		}{acct.String() + " < start", sum.Accounts[acct].FractionBelow})
	}

	var b strings.Builder
	for i, r := range rows {
		b.WriteString(components.RiskBar(r.label, r.p, labelW, barW))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}

	if base, ok := a.baseline(); ok {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("vs " + truncStr(base.label, innerW-3)))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-8s", "Liquid")))
		b.WriteString(renderDelta(sum.Liquid.Mean, base.liquid))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-8s", "Total")))
		b.WriteString(renderDelta(sum.Total.Mean, base.total))
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Start "))
	b.WriteString(valueStyle.Render(cli.FormatMoneyWhole(s.InitialTotal())))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" · %d weeks", s.Weeks)))

	return b.String()
}

// renderDelta colors a signed change between two balances.
func renderDelta(current, previous float64) string {
	t := theme.Active
	color := t.Gain()
	if current < previous {
		color = t.Loss()
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).
		Render(cli.FormatMoneyDelta(current, previous))
}
