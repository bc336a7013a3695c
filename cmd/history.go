package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored projections",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored projection",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored projection",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum projections to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	h, err := pipeline.OpenHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	recs, err := h.ListProjections(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("listing projections: %w", err)
	}
	if len(recs) == 0 {
		fmt.Println("\n  No stored projections yet. Run `fincast` to create one.")
		return nil
	}
	total, err := h.Count()
	if err != nil {
		return fmt.Errorf("counting projections: %w", err)
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.ID[:8],
			r.Scenario.Name,
			cli.FormatAge(r.CreatedAt),
			cli.FormatNumber(int64(r.Runs)),
			strconv.Itoa(r.Weeks),
			cli.FormatMeanStd(r.Liquid.Mean, r.Liquid.StdDev),
			cli.FormatMeanStd(r.Total.Mean, r.Total.StdDev),
			cli.FormatPercent(r.Total.FractionBelow),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Projections (%d of %d)", len(recs), total),
		Headers: []string{"ID", "Scenario", "When", "Runs", "Weeks", "Liquid", "Total", "P(loss)"},
		Rows:    rows,
	}))
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	h, err := pipeline.OpenHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	r, err := h.GetProjection(args[0])
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Scenario", r.Scenario.Name},
		{"Created", r.CreatedAt.Local().Format("02/01/2006 15:04")},
		{"Runs", cli.FormatNumber(int64(r.Runs))},
		{"Weeks", strconv.Itoa(r.Weeks)},
		{"Seed", strconv.FormatUint(r.Seed, 10)},
		{"---"},
	}
	for _, a := range model.Accounts {
		st, ok := r.Accounts[a]
		if !ok {
			continue
		}
		rows = append(rows, []string{a.String(), cli.FormatMeanStd(st.Mean, st.StdDev)})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Liquid", cli.FormatMeanStd(r.Liquid.Mean, r.Liquid.StdDev)},
		[]string{"P(liquid < £0)", cli.FormatPercent(r.Liquid.FractionBelow)},
		[]string{"Total", cli.FormatMeanStd(r.Total.Mean, r.Total.StdDev)},
		[]string{"Difference", cli.RenderDelta(r.Total.Mean, r.InitialTotal)},
		[]string{"P(total < initial)", cli.FormatPercent(r.Total.FractionBelow)},
	)

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Projection " + r.ID,
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	return nil
}

func runHistoryDelete(_ *cobra.Command, args []string) error {
	h, err := pipeline.OpenHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	r, err := h.GetProjection(args[0])
	if err != nil {
		return err
	}
	if err := h.DeleteProjection(r.ID); err != nil {
		return fmt.Errorf("deleting %s: %w", r.ID, err)
	}
	fmt.Printf("  Deleted projection %s (%s)\n", r.ID[:8], r.Scenario.Name)
	return nil
}
