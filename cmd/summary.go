package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Final balance summary for the projection",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	out, err := project()
	if err != nil {
		return err
	}

	s := out.Result.Scenario
	sum := out.Summary

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", strings.ToUpper(s.Name), cli.FormatDateRange(time.Now(), s.Weeks))))
	fmt.Println()

	rows := [][]string{
		{"Liquid (current + savings)", cli.FormatMeanStd(sum.Liquid.Mean, sum.Liquid.StdDev)},
		{"P(liquid < £0)", cli.FormatPercent(sum.Liquid.FractionBelow)},
		{"---"},
	}
	for _, a := range []model.Account{model.ISA, model.LISA} {
		st := sum.Accounts[a]
		rows = append(rows, []string{a.String(), cli.FormatMeanStd(st.Mean, st.StdDev)})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", cli.FormatMeanStd(sum.Total.Mean, sum.Total.StdDev)},
		[]string{"Initial total", cli.FormatMoneyWhole(sum.InitialTotal)},
		[]string{"Difference", cli.RenderDelta(sum.Total.Mean, sum.InitialTotal)},
		[]string{"P(total < initial)", cli.FormatPercent(sum.Total.FractionBelow)},
	)

	if prev := out.Previous; prev != nil {
		rows = append(rows,
			[]string{"---"},
			[]string{"Previous run", cli.FormatAge(prev.CreatedAt)},
			[]string{"Liquid vs previous", cli.RenderDelta(sum.Liquid.Mean, prev.Liquid.Mean)},
			[]string{"Total vs previous", cli.RenderDelta(sum.Total.Mean, prev.Total.Mean)},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	fmt.Printf("\n  %s runs · %d weeks · seed %d\n",
		cli.FormatNumber(int64(sum.Runs)), sum.Weeks, sum.Seed)
	if out.RecordID != "" {
		fmt.Printf("  recorded as %s\n", out.RecordID[:8])
	}
	return nil
}
