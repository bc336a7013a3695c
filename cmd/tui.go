package cmd

import (
	"fmt"
	"io"

	"github.com/theirongolddev/fincast/internal/tui"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	s, path, err := resolveScenario(cfg)
	if err != nil {
		return err
	}
	opts := ensembleOptions(cfg)

	// Log lines on stderr would tear the alt screen.
	if !flagVerbose {
		log.Logger = log.Output(io.Discard)
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Scenario:      s,
		ScenarioPath:  path,
		Runs:          opts.Runs,
		Workers:       opts.Workers,
		Seed:          opts.Seed,
		RecordHistory: recordHistory(cfg),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
