// Package projection simulates week-by-week account balances for a single run.
package projection

import (
	"math"

	"github.com/theirongolddev/fincast/internal/model"
)

const (
	weeksPerYear = 52

	// lisaBonus is the government top-up applied to every LISA contribution.
	lisaBonus = 1.25
)

// WeeklyGrowth converts an annual growth mean and stdev, both in percent,
// to the weekly rate distribution used by the investment accounts.
func WeeklyGrowth(annualMean, annualStdDev float64) (mean, stdev float64) {
	return annualMean / 100 / weeksPerYear, annualStdDev / 100 / math.Sqrt(weeksPerYear)
}

// Simulate produces one trajectory for the scenario. It performs no
// validation; use Run when the scenario comes from user input.
//
// Each week draws, in order, spending, ISA growth and LISA growth. Interest
// and growth apply to the balance after that week's inflow, spend or
// contribution. Balances are never clamped at zero.
func Simulate(s model.Scenario, draw Sampler) model.Trajectory {
	t := model.NewTrajectory(s.Weeks)
	if s.Weeks < 1 {
		return t
	}

	t.Current[0] = s.CurrentBalance
	t.Savings[0] = s.SavingsBalance
	t.ISA[0] = s.ISABalance
	t.LISA[0] = s.LISABalance

	weeklyInflow := s.AnnualInflow / weeksPerYear
	isaMean, isaStd := WeeklyGrowth(s.ISAMean, s.ISAStdDev)
	lisaMean, lisaStd := WeeklyGrowth(s.LISAMean, s.LISAStdDev)

	for w := 1; w < s.Weeks; w++ {
		sav := t.Savings[w-1] + weeklyInflow - draw.Normal(s.SpendMean, s.SpendStdDev)
		sav += sav * (s.SavingsInterest / 100) / weeksPerYear
		t.Savings[w] = sav

		t.Current[w] = t.Current[w-1]

		isa := t.ISA[w-1] + s.ISAWeeklyPayment
		isa += isa * draw.Normal(isaMean, isaStd)
		t.ISA[w] = isa

		lisa := t.LISA[w-1] + s.LISAWeeklyPayment*lisaBonus
		lisa += lisa * draw.Normal(lisaMean, lisaStd)
		t.LISA[w] = lisa
	}

	return t
}

// Run validates the scenario and then simulates it.
func Run(s model.Scenario, draw Sampler) (model.Trajectory, error) {
	if err := s.Validate(); err != nil {
		return model.Trajectory{}, err
	}
	return Simulate(s, draw), nil
}
