package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagHistWidth int

var histogramCmd = &cobra.Command{
	Use:       "histogram [account|liquid|total]",
	Short:     "Histograms of final balances",
	Long:      "Show final-balance histograms. With no argument, one per account.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"current", "savings", "isa", "lisa", "liquid", "total"},
	RunE:      runHistogram,
}

func init() {
	histogramCmd.Flags().IntVar(&flagHistWidth, "width", 40, "Maximum bar width")
	rootCmd.AddCommand(histogramCmd)
}

// histogramTarget is one distribution to plot.
type histogramTarget struct {
	name   string
	values []float64
	stats  model.DistributionStats
	start  float64
}

func histogramTargets(out *pipeline.RecordedResult, which string) ([]histogramTarget, error) {
	res := out.Result
	s := res.Scenario

	account := func(a model.Account) histogramTarget {
		return histogramTarget{a.String(), pipeline.FinalBalances(res, a), out.Summary.Accounts[a], s.InitialBalance(a)}
	}

	switch strings.ToLower(which) {
	case "":
		targets := make([]histogramTarget, 0, len(model.Accounts))
		for _, a := range model.Accounts {
			targets = append(targets, account(a))
		}
		return targets, nil
	case "liquid":
		return []histogramTarget{{"Liquid", pipeline.FinalLiquid(res), out.Summary.Liquid, s.InitialLiquid()}}, nil
	case "total":
		return []histogramTarget{{"Total", pipeline.FinalTotal(res), out.Summary.Total, s.InitialTotal()}}, nil
	}

	a, err := model.ParseAccount(which)
	if err != nil {
		return nil, err
	}
	return []histogramTarget{account(a)}, nil
}

func runHistogram(_ *cobra.Command, args []string) error {
	which := ""
	if len(args) == 1 {
		which = args[0]
	}

	out, err := project()
	if err != nil {
		return err
	}
	targets, err := histogramTargets(out, which)
	if err != nil {
		return err
	}

	bins := pipeline.DefaultBinCount(out.Result.RunCount())
	for _, tg := range targets {
		fmt.Println()
		title := fmt.Sprintf("%s  %s", tg.name, cli.FormatMeanStd(tg.stats.Mean, tg.stats.StdDev))
		fmt.Print(cli.RenderHistogram(title, pipeline.Histogram(tg.values, bins), flagHistWidth,
			cli.Mark{Label: "start", Value: tg.start},
			cli.Mark{Label: "mean", Value: tg.stats.Mean},
		))
	}
	return nil
}
