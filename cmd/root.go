package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/source"
	"github.com/theirongolddev/fincast/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagScenario  string
	flagRuns      int
	flagWeeks     int
	flagSeed      uint64
	flagWorkers   int
	flagQuiet     bool
	flagNoHistory bool
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "fincast",
	Short: "Monte Carlo balance projections",
	Long: "Project current, savings, ISA and LISA balances over the coming weeks " +
		"by simulating many possible futures.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = runSummary

	rootCmd.PersistentFlags().StringVarP(&flagScenario, "scenario", "s", "", "Scenario name or file (.toml, .yaml)")
	rootCmd.PersistentFlags().IntVarP(&flagRuns, "runs", "n", 0, "Number of simulated runs (default from config)")
	rootCmd.PersistentFlags().IntVarP(&flagWeeks, "weeks", "w", 0, "Override the projection length in weeks")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Fix the random seed for a repeatable projection")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Worker goroutines (default GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record this projection")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}

// loadConfig loads the app config; a broken file is an error, a missing one is not.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// resolveScenario picks the scenario from --scenario, then the configured
// file, then the built-in defaults. It returns the scenario and the file it
// came from (empty for the defaults).
func resolveScenario(cfg config.Config) (model.Scenario, string, error) {
	ref := flagScenario
	if ref == "" {
		ref = cfg.General.ScenarioFile
	}

	s := model.DefaultScenario()
	path := ""
	if ref != "" {
		path = source.Resolve(ref, config.ScenariosDir())
		loaded, err := source.LoadScenario(path)
		if err != nil {
			return s, path, err
		}
		s = loaded
		log.Debug().Str("path", path).Str("scenario", s.Name).Msg("loaded scenario")
	}

	if !cfg.Overrides.IsEmpty() {
		s = cfg.Overrides.Apply(s)
	}
	if flagWeeks > 0 {
		s.Weeks = flagWeeks
	}
	if err := s.Validate(); err != nil {
		return s, path, err
	}
	return s, path, nil
}

// ensembleOptions merges flags over the config.
func ensembleOptions(cfg config.Config) pipeline.Options {
	opts := pipeline.Options{
		Runs:    cfg.General.Runs,
		Workers: cfg.General.Workers,
		Seed:    cfg.General.Seed,
	}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("runs") {
		opts.Runs = flagRuns
	}
	if flags.Changed("workers") {
		opts.Workers = flagWorkers
	}
	if flags.Changed("seed") {
		opts.Seed = pipeline.SeedPtr(flagSeed)
	}
	return opts
}

// recordHistory reports whether projections should be stored.
func recordHistory(cfg config.Config) bool {
	return cfg.General.RecordHistory && !flagNoHistory
}

// project loads config and scenario, runs the ensemble with a progress
// line on stderr, and records it unless history is off.
func project() (*pipeline.RecordedResult, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, _, err := resolveScenario(cfg)
	if err != nil {
		return nil, err
	}

	opts := ensembleOptions(cfg)
	if !flagQuiet {
		step := max(opts.Runs/50, 1)
		opts.Progress = func(current, total int) {
			if current%step == 0 || current == total {
				fmt.Fprintf(os.Stderr, "\r  Simulating [%d/%d]", current, total)
			}
		}
	}

	var h *store.History
	if recordHistory(cfg) {
		hist, err := pipeline.OpenHistory()
		if err != nil {
			log.Warn().Err(err).Msg("history unavailable, projection will not be recorded")
		} else {
			defer func() { _ = hist.Close() }()
			h = hist
		}
	}

	start := time.Now()
	out, err := pipeline.RunWithHistory(s, opts, h)
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r%40s\r", "")
	}
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("scenario", s.Name).
		Int("runs", out.Result.RunCount()).
		Uint64("seed", out.Result.Seed).
		Dur("elapsed", time.Since(start)).
		Msg("projection complete")
	return out, nil
}
