package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/source"

	"github.com/spf13/cobra"
)

var (
	flagScenarioFormat string
	flagForce          bool
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Show the resolved scenario",
	Long: "Show the scenario a projection would use, after the config overrides " +
		"and --weeks are applied.",
	RunE: runScenarioShow,
}

var scenarioInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a scenario file with the default assumptions",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioInit,
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenario files in the scenarios directory",
	RunE:  runScenarioList,
}

func init() {
	scenarioCmd.Flags().StringVar(&flagScenarioFormat, "format", "", "Print as a scenario file (toml or yaml)")
	scenarioInitCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite an existing file")
	scenarioCmd.AddCommand(scenarioInitCmd, scenarioListCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, path, err := resolveScenario(cfg)
	if err != nil {
		return err
	}

	if flagScenarioFormat != "" {
		data, err := source.Encode(s, source.Format(flagScenarioFormat))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if path == "" {
		path = "(built-in defaults)"
	}
	money := cli.FormatMoney
	pct := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "%" }
	rows := [][]string{
		{"Name", s.Name},
		{"Source", path},
		{"Weeks", strconv.Itoa(s.Weeks)},
		{"---"},
		{"Current balance", money(s.CurrentBalance)},
		{"Savings balance", money(s.SavingsBalance)},
		{"ISA balance", money(s.ISABalance)},
		{"LISA balance", money(s.LISABalance)},
		{"---"},
		{"Savings interest", pct(s.SavingsInterest) + "/yr"},
		{"ISA growth", pct(s.ISAMean) + " ± " + pct(s.ISAStdDev)},
		{"LISA growth", pct(s.LISAMean) + " ± " + pct(s.LISAStdDev)},
		{"---"},
		{"ISA payment", money(s.ISAWeeklyPayment) + "/wk"},
		{"LISA payment", money(s.LISAWeeklyPayment) + "/wk"},
		{"Spending", money(s.SpendMean) + " ± " + money(s.SpendStdDev) + "/wk"},
		{"Annual inflow", money(s.AnnualInflow)},
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Assumption", "Value"},
		Rows:    rows,
	}))
	return nil
}

func runScenarioInit(_ *cobra.Command, args []string) error {
	path := source.Resolve(args[0], config.ScenariosDir())
	if _, err := os.Stat(path); err == nil && !flagForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	s := model.DefaultScenario()
	s.Name = ""
	if err := source.SaveScenario(path, s); err != nil {
		return err
	}
	fmt.Printf("  Wrote default scenario to %s\n", path)
	return nil
}

func runScenarioList(_ *cobra.Command, _ []string) error {
	dir := config.ScenariosDir()
	files, err := source.ScanDir(dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		fmt.Printf("\n  No scenario files in %s\n", dir)
		fmt.Println("  Create one with `fincast scenario init <name>` or `fincast setup`.")
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		mark := ""
		if f.Path == cfg.General.ScenarioFile {
			mark = "default"
		}
		rows = append(rows, []string{f.Name, string(f.Format), mark})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   dir,
		Headers: []string{"Name", "Format", ""},
		Rows:    rows,
	}))
	return nil
}
