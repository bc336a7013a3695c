// Package model defines domain types for fincast projections.
package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidScenario is wrapped by every scenario validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario holds every assumption for one projection. The same Scenario is
// reused unchanged across all runs of an ensemble; only the random draws differ.
type Scenario struct {
	Name string `toml:"name" yaml:"name" json:"name"`

	// Initial balances. Negative values are allowed and mean an overdraft.
	CurrentBalance float64 `toml:"current_balance" yaml:"current_balance" json:"current_balance"`
	SavingsBalance float64 `toml:"savings_balance" yaml:"savings_balance" json:"savings_balance"`
	ISABalance     float64 `toml:"isa_balance" yaml:"isa_balance" json:"isa_balance"`
	LISABalance    float64 `toml:"lisa_balance" yaml:"lisa_balance" json:"lisa_balance"`

	// SavingsInterest is an annual percentage, e.g. 4 for 4%.
	SavingsInterest float64 `toml:"savings_interest" yaml:"savings_interest" json:"savings_interest"`

	// Annual growth percentages for the investment accounts.
	ISAMean    float64 `toml:"isa_mean" yaml:"isa_mean" json:"isa_mean"`
	ISAStdDev  float64 `toml:"isa_stdev" yaml:"isa_stdev" json:"isa_stdev"`
	LISAMean   float64 `toml:"lisa_mean" yaml:"lisa_mean" json:"lisa_mean"`
	LISAStdDev float64 `toml:"lisa_stdev" yaml:"lisa_stdev" json:"lisa_stdev"`

	ISAWeeklyPayment  float64 `toml:"isa_weekly_payment" yaml:"isa_weekly_payment" json:"isa_weekly_payment"`
	LISAWeeklyPayment float64 `toml:"lisa_weekly_payment" yaml:"lisa_weekly_payment" json:"lisa_weekly_payment"`

	// Weekly discretionary spending, excluding ISA and LISA payments.
	SpendMean   float64 `toml:"weekly_spendings_mean" yaml:"weekly_spendings_mean" json:"weekly_spendings_mean"`
	SpendStdDev float64 `toml:"weekly_spendings_stdev" yaml:"weekly_spendings_stdev" json:"weekly_spendings_stdev"`

	// AnnualInflow is total yearly income, credited to savings as 1/52 per week.
	AnnualInflow float64 `toml:"annual_inflow" yaml:"annual_inflow" json:"annual_inflow"`

	// Weeks is the projection length including week 0.
	Weeks int `toml:"weeks" yaml:"weeks" json:"weeks"`
}

// DefaultScenario returns the reference student budget: a loan plus
// part-time and summer work, modest savings and two investment accounts.
func DefaultScenario() Scenario {
	return Scenario{
		Name:              "default",
		CurrentBalance:    100,
		SavingsBalance:    1000,
		SavingsInterest:   4,
		ISABalance:        1000,
		ISAMean:           8,
		ISAStdDev:         12,
		ISAWeeklyPayment:  10,
		LISABalance:       1000,
		LISAMean:          4,
		LISAStdDev:        8,
		LISAWeeklyPayment: 10,
		SpendMean:         300,
		SpendStdDev:       100,
		AnnualInflow:      10000 + 100*30 + 3000,
		Weeks:             52,
	}
}

// Validate reports every problem with the scenario at once.
// Each returned error wraps ErrInvalidScenario.
func (s Scenario) Validate() error {
	var errs []error
	if s.Weeks < 1 {
		errs = append(errs, fmt.Errorf("weeks must be at least 1, got %d", s.Weeks))
	}

	stdevs := []struct {
		name string
		v    float64
	}{
		{"isa_stdev", s.ISAStdDev},
		{"lisa_stdev", s.LISAStdDev},
		{"weekly_spendings_stdev", s.SpendStdDev},
	}
	for _, sd := range stdevs {
		if sd.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %g", sd.name, sd.v))
		}
	}

	fields := s.numericFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := fields[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be finite, got %g", name, v))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
}

func (s Scenario) numericFields() map[string]float64 {
	return map[string]float64{
		"current_balance":        s.CurrentBalance,
		"savings_balance":        s.SavingsBalance,
		"isa_balance":            s.ISABalance,
		"lisa_balance":           s.LISABalance,
		"savings_interest":       s.SavingsInterest,
		"isa_mean":               s.ISAMean,
		"isa_stdev":              s.ISAStdDev,
		"lisa_mean":              s.LISAMean,
		"lisa_stdev":             s.LISAStdDev,
		"isa_weekly_payment":     s.ISAWeeklyPayment,
		"lisa_weekly_payment":    s.LISAWeeklyPayment,
		"weekly_spendings_mean":  s.SpendMean,
		"weekly_spendings_stdev": s.SpendStdDev,
		"annual_inflow":          s.AnnualInflow,
	}
}

// InitialBalance returns the configured week-0 balance for an account.
func (s Scenario) InitialBalance(a Account) float64 {
	switch a {
	case Current:
		return s.CurrentBalance
	case Savings:
		return s.SavingsBalance
	case ISA:
		return s.ISABalance
	case LISA:
		return s.LISABalance
	}
	return 0
}

// InitialLiquid is the starting current plus savings balance.
func (s Scenario) InitialLiquid() float64 {
	return s.CurrentBalance + s.SavingsBalance
}

// InitialTotal is the starting balance across all four accounts.
func (s Scenario) InitialTotal() float64 {
	return s.CurrentBalance + s.SavingsBalance + s.ISABalance + s.LISABalance
}
