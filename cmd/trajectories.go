package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagEvery int

var trajectoriesCmd = &cobra.Command{
	Use:   "trajectories",
	Short: "Weekly balance bands for each account",
	RunE:  runTrajectories,
}

func init() {
	trajectoriesCmd.Flags().IntVar(&flagEvery, "every", 4, "Show every Nth week")
	rootCmd.AddCommand(trajectoriesCmd)
}

func runTrajectories(_ *cobra.Command, _ []string) error {
	if flagEvery < 1 {
		return fmt.Errorf("--every must be at least 1, got %d", flagEvery)
	}

	out, err := project()
	if err != nil {
		return err
	}

	start := time.Now()
	type series struct {
		name string
		fn   pipeline.Series
	}
	all := make([]series, 0, len(model.Accounts)+2)
	for _, a := range model.Accounts {
		all = append(all, series{a.String(), pipeline.AccountSeries(a)})
	}
	all = append(all, series{"Liquid", pipeline.LiquidSeries}, series{"Total", pipeline.TotalSeries})

	for _, sr := range all {
		bands := pipeline.WeeklyBands(out.Result, sr.fn)
		if len(bands) == 0 {
			continue
		}

		medians := make([]float64, len(bands))
		for i, b := range bands {
			medians[i] = b.P50
		}

		var rows [][]string
		for w := 0; w < len(bands); w += flagEvery {
			rows = append(rows, bandRow(bands[w], start))
		}
		if last := len(bands) - 1; last%flagEvery != 0 {
			rows = append(rows, bandRow(bands[last], start))
		}

		fmt.Println()
		fmt.Printf("  %s  %s\n", sr.name, cli.RenderSparkline(medians))
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Week", "Date", "P10", "Median", "P90"},
			Rows:    rows,
		}))
	}
	return nil
}

func bandRow(b model.WeekBand, start time.Time) []string {
	return []string{
		strconv.Itoa(b.Week),
		cli.FormatDate(start.AddDate(0, 0, 7*b.Week)),
		cli.FormatMoneyWhole(b.P10),
		cli.FormatMoneyWhole(b.P50),
		cli.FormatMoneyWhole(b.P90),
	}
}
