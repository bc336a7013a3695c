// Package cmd implements the fincast CLI commands.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	where := config.Path()
	if !config.Exists() {
		where += " (not found, using defaults)"
	}
	fmt.Printf("  %s\n\n", where)

	g := cfg.General
	workers, seed, scenario := "auto", "random", "built-in defaults"
	if g.Workers > 0 {
		workers = strconv.Itoa(g.Workers)
	}
	if g.Seed != nil {
		seed = strconv.FormatUint(*g.Seed, 10)
	}
	if g.ScenarioFile != "" {
		scenario = g.ScenarioFile
	}
	overrides := "none"
	if !cfg.Overrides.IsEmpty() {
		overrides = "set, see `fincast scenario`"
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Setting", "Value"},
		Rows: [][]string{
			{"general.runs", cli.FormatNumber(int64(g.Runs))},
			{"general.workers", workers},
			{"general.seed", seed},
			{"general.scenario_file", scenario},
			{"general.record_history", strconv.FormatBool(g.RecordHistory)},
			{"history file", pipeline.HistoryPath()},
			{"---"},
			{"appearance.theme", cfg.Appearance.Theme},
			{"---"},
			{"daemon.addr", cfg.Daemon.Addr},
			{"daemon.schedule", cfg.Daemon.Schedule},
			{"daemon.events_buffer", strconv.Itoa(cfg.Daemon.EventsBuffer)},
			{"---"},
			{"overrides", overrides},
		},
	}))
	fmt.Println("\n  Run `fincast setup` to reconfigure.")
	return nil
}
