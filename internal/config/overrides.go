package config

import "github.com/theirongolddev/fincast/internal/model"

// ScenarioOverrides holds standing per-field changes applied on top of
// whichever scenario is loaded. Only keys present in the file are set.
type ScenarioOverrides struct {
	SavingsInterest   *float64 `toml:"savings_interest,omitempty"`
	ISAMean           *float64 `toml:"isa_mean,omitempty"`
	ISAStdDev         *float64 `toml:"isa_stdev,omitempty"`
	LISAMean          *float64 `toml:"lisa_mean,omitempty"`
	LISAStdDev        *float64 `toml:"lisa_stdev,omitempty"`
	ISAWeeklyPayment  *float64 `toml:"isa_weekly_payment,omitempty"`
	LISAWeeklyPayment *float64 `toml:"lisa_weekly_payment,omitempty"`
	SpendMean         *float64 `toml:"weekly_spendings_mean,omitempty"`
	SpendStdDev       *float64 `toml:"weekly_spendings_stdev,omitempty"`
	AnnualInflow      *float64 `toml:"annual_inflow,omitempty"`
	Weeks             *int     `toml:"weeks,omitempty"`
}

// IsEmpty reports whether no override is set.
func (o ScenarioOverrides) IsEmpty() bool {
	return o == ScenarioOverrides{}
}

// Apply returns s with every set override copied in.
func (o ScenarioOverrides) Apply(s model.Scenario) model.Scenario {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.SavingsInterest, o.SavingsInterest)
	set(&s.ISAMean, o.ISAMean)
	set(&s.ISAStdDev, o.ISAStdDev)
	set(&s.LISAMean, o.LISAMean)
	set(&s.LISAStdDev, o.LISAStdDev)
	set(&s.ISAWeeklyPayment, o.ISAWeeklyPayment)
	set(&s.LISAWeeklyPayment, o.LISAWeeklyPayment)
	set(&s.SpendMean, o.SpendMean)
	set(&s.SpendStdDev, o.SpendStdDev)
	set(&s.AnnualInflow, o.AnnualInflow)
	if o.Weeks != nil {
		s.Weeks = *o.Weeks
	}
	return s
}
