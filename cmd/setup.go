package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/fincast/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-time setup",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	base, _, err := resolveScenario(cfg)
	if err != nil {
		return err
	}

	vals := tui.NewSetupValues(base, cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing written.")
			return nil
		}
		return err
	}

	res, err := tui.ApplySetup(vals, base, cfg)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved scenario %q to %s\n", res.Scenario.Name, res.ScenarioPath)
	fmt.Println("  Run `fincast` for a summary or `fincast tui` for the dashboard.")
	return nil
}
