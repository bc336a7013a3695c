package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/source"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the setup form as entered text.
type SetupValues struct {
	Name        string
	Current     string
	Savings     string
	ISA         string
	LISA        string
	Inflow      string
	SpendMean   string
	SpendStdDev string
	ISAPayment  string
	LISAPayment string
	Weeks       string
	Runs        string
	Theme       string
	MakeDefault bool
}

// NewSetupValues prefills the form from a scenario and config.
func NewSetupValues(s model.Scenario, cfg config.Config) SetupValues {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	name := s.Name
	if name == "" {
		name = "default"
	}
	return SetupValues{
		Name:        name,
		Current:     f(s.CurrentBalance),
		Savings:     f(s.SavingsBalance),
		ISA:         f(s.ISABalance),
		LISA:        f(s.LISABalance),
		Inflow:      f(s.AnnualInflow),
		SpendMean:   f(s.SpendMean),
		SpendStdDev: f(s.SpendStdDev),
		ISAPayment:  f(s.ISAWeeklyPayment),
		LISAPayment: f(s.LISAWeeklyPayment),
		Weeks:       strconv.Itoa(s.Weeks),
		Runs:        strconv.Itoa(cfg.General.Runs),
		Theme:       cfg.Appearance.Theme,
		MakeDefault: true,
	}
}

func validateMoney(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("enter a number")
	}
	return nil
}

func validateNonNegative(s string) error {
	if err := validateMoney(s); err != nil {
		return err
	}
	if v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64); v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func validateName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("name cannot contain path separators")
	}
	return nil
}

// NewSetupForm builds the setup wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := huh.NewOptions(theme.Names()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fincast").
				Description("Answer a few questions to describe your accounts.\nEverything can be edited later in the scenario file."),
			huh.NewInput().Title("Scenario name").Value(&vals.Name).Validate(validateName),
		),
		huh.NewGroup(
			huh.NewInput().Title("Current account balance (£)").Value(&vals.Current).Validate(validateMoney),
			huh.NewInput().Title("Savings account balance (£)").Value(&vals.Savings).Validate(validateMoney),
			huh.NewInput().Title("ISA balance (£)").Value(&vals.ISA).Validate(validateMoney),
			huh.NewInput().Title("LISA balance (£)").Value(&vals.LISA).Validate(validateMoney),
		).Title("Balances today"),
		huh.NewGroup(
			huh.NewInput().Title("Annual income (£)").Value(&vals.Inflow).Validate(validateMoney),
			huh.NewInput().Title("Typical weekly spending (£)").Value(&vals.SpendMean).Validate(validateMoney),
			huh.NewInput().Title("Weekly spending spread (£, one std dev)").Value(&vals.SpendStdDev).Validate(validateNonNegative),
			huh.NewInput().Title("Weekly ISA payment (£)").Value(&vals.ISAPayment).Validate(validateMoney),
			huh.NewInput().Title("Weekly LISA payment (£, before the 25% bonus)").Value(&vals.LISAPayment).Validate(validateMoney),
		).Title("Money in and out"),
		huh.NewGroup(
			huh.NewInput().Title("Weeks to project").Value(&vals.Weeks).Validate(validatePositiveInt),
			huh.NewInput().Title("Simulation runs").Value(&vals.Runs).Validate(validatePositiveInt),
			huh.NewSelect[string]().Title("Color theme").Options(themeOpts...).Value(&vals.Theme),
			huh.NewConfirm().Title("Use this scenario by default?").Value(&vals.MakeDefault),
		).Title("Projection"),
	).WithShowHelp(true)
}

// Scenario converts the answers onto base, keeping its growth assumptions.
func (v SetupValues) Scenario(base model.Scenario) (model.Scenario, error) {
	s := base
	s.Name = strings.TrimSpace(v.Name)

	fields := []struct {
		in  string
		dst *float64
	}{
		{v.Current, &s.CurrentBalance},
		{v.Savings, &s.SavingsBalance},
		{v.ISA, &s.ISABalance},
		{v.LISA, &s.LISABalance},
		{v.Inflow, &s.AnnualInflow},
		{v.SpendMean, &s.SpendMean},
		{v.SpendStdDev, &s.SpendStdDev},
		{v.ISAPayment, &s.ISAWeeklyPayment},
		{v.LISAPayment, &s.LISAWeeklyPayment},
	}
	for _, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f.in), 64)
		if err != nil {
			return base, fmt.Errorf("parsing %q: %w", f.in, err)
		}
		*f.dst = x
	}

	weeks, err := strconv.Atoi(strings.TrimSpace(v.Weeks))
	if err != nil {
		return base, fmt.Errorf("parsing weeks: %w", err)
	}
	s.Weeks = weeks

	if err := s.Validate(); err != nil {
		return base, err
	}
	return s, nil
}

// SetupResult reports what ApplySetup wrote.
type SetupResult struct {
	Scenario     model.Scenario
	ScenarioPath string
	Config       config.Config
}

// ApplySetup writes the scenario under the scenarios directory and updates
// the app config with the chosen runs and theme.
func ApplySetup(vals SetupValues, base model.Scenario, cfg config.Config) (SetupResult, error) {
	s, err := vals.Scenario(base)
	if err != nil {
		return SetupResult{}, err
	}

	runs, err := strconv.Atoi(strings.TrimSpace(vals.Runs))
	if err != nil {
		return SetupResult{}, fmt.Errorf("parsing runs: %w", err)
	}

	path := filepath.Join(config.ScenariosDir(), s.Name+".toml")
	if err := source.SaveScenario(path, s); err != nil {
		return SetupResult{}, err
	}

	cfg.General.Runs = runs
	if vals.Theme != "" {
		cfg.Appearance.Theme = vals.Theme
	}
	if vals.MakeDefault {
		cfg.General.ScenarioFile = path
	}
	if err := config.Save(cfg); err != nil {
		return SetupResult{}, fmt.Errorf("saving config: %w", err)
	}
	theme.SetActive(cfg.Appearance.Theme)

	return SetupResult{Scenario: s, ScenarioPath: path, Config: cfg}, nil
}
