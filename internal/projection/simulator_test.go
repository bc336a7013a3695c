package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/theirongolddev/fincast/internal/model"
)

func flatScenario() model.Scenario {
	return model.Scenario{
		Name:           "flat",
		CurrentBalance: 100,
		SavingsBalance: 1000,
		ISABalance:     1000,
		LISABalance:    1000,
		Weeks:          5,
	}
}

func assertClose(t *testing.T, label string, got, want float64) {
	t.Helper()
	tol := 1e-9 * math.Max(1, math.Abs(want))
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.12f, want %.12f", label, got, want)
	}
}

func TestSimulate_FlatScenarioStaysConstant(t *testing.T) {
	s := flatScenario()
	tr := Simulate(s, NewSampler(1, 0))

	if tr.Len() != 5 {
		t.Fatalf("Len = %d, want 5", tr.Len())
	}
	for _, a := range model.Accounts {
		want := s.InitialBalance(a)
		for w, got := range tr.Balances(a) {
			if got != want {
				t.Fatalf("%s week %d = %v, want %v", a, w, got, want)
			}
		}
	}
	if got := tr.Total(4); got != 3100 {
		t.Fatalf("final total = %v, want 3100", got)
	}
}

func TestSimulate_WeekZeroIsInitialBalance(t *testing.T) {
	s := model.DefaultScenario()
	s.CurrentBalance = -42.5
	tr := Simulate(s, NewSampler(7, 3))

	for _, a := range model.Accounts {
		if got := tr.At(a, 0); got != s.InitialBalance(a) {
			t.Errorf("%s week 0 = %v, want %v", a, got, s.InitialBalance(a))
		}
	}
}

func TestSimulate_CurrentAccountNeverChanges(t *testing.T) {
	s := model.DefaultScenario()
	for seed := uint64(0); seed < 20; seed++ {
		tr := Simulate(s, NewSampler(seed, seed))
		for w, got := range tr.Current {
			if got != s.CurrentBalance {
				t.Fatalf("seed %d week %d current = %v, want %v", seed, w, got, s.CurrentBalance)
			}
		}
	}
}

func TestSimulate_DeterministicForSameSeed(t *testing.T) {
	s := model.DefaultScenario()
	a := Simulate(s, NewSampler(2024, 9))
	b := Simulate(s, NewSampler(2024, 9))

	for _, acct := range model.Accounts {
		for w := range a.Balances(acct) {
			if a.At(acct, w) != b.At(acct, w) {
				t.Fatalf("%s week %d differs: %v vs %v", acct, w, a.At(acct, w), b.At(acct, w))
			}
		}
	}

	c := Simulate(s, NewSampler(2024, 10))
	if c.Final(model.Savings) == a.Final(model.Savings) {
		t.Fatal("different streams produced identical savings trajectories")
	}
}

func TestSimulate_ZeroVarianceMatchesClosedForm(t *testing.T) {
	s := model.Scenario{
		ISABalance:        500,
		ISAMean:           8,
		ISAWeeklyPayment:  10,
		LISABalance:       200,
		LISAMean:          4,
		LISAWeeklyPayment: 20,
		Weeks:             53,
	}
	// Spreads are zero, so even an unseeded generator is deterministic.
	tr := Simulate(s, NewSampler(0, 0))

	compound := func(b0, pay, r float64, w int) float64 {
		g := math.Pow(1+r, float64(w))
		return b0*g + pay*(1+r)*(g-1)/r
	}

	isaRate := s.ISAMean / 100 / 52
	lisaRate := s.LISAMean / 100 / 52
	for _, w := range []int{1, 10, 26, 52} {
		assertClose(t, "ISA", tr.ISA[w], compound(s.ISABalance, s.ISAWeeklyPayment, isaRate, w))
		assertClose(t, "LISA", tr.LISA[w], compound(s.LISABalance, s.LISAWeeklyPayment*1.25, lisaRate, w))
	}
}

func TestSimulate_InterestAppliesAfterSpend(t *testing.T) {
	s := model.Scenario{
		SavingsBalance:  1000,
		SavingsInterest: 52, // 1% per week
		SpendMean:       100,
		AnnualInflow:    52 * 50,
		Weeks:           2,
	}
	tr := Simulate(s, Fixed())

	// (1000 + 50 - 100) * 1.01, not 1000*1.01 + 50 - 100.
	assertClose(t, "savings week 1", tr.Savings[1], 959.5)
}

func TestSimulate_GrowthAppliesAfterContribution(t *testing.T) {
	s := model.Scenario{
		ISABalance:        100,
		ISAMean:           52 * 10, // 10% per week
		ISAWeeklyPayment:  100,
		LISABalance:       100,
		LISAMean:          52 * 10,
		LISAWeeklyPayment: 80,
		Weeks:             2,
	}
	tr := Simulate(s, Fixed())

	assertClose(t, "ISA week 1", tr.ISA[1], 220)   // (100 + 100) * 1.1
	assertClose(t, "LISA week 1", tr.LISA[1], 220) // (100 + 80*1.25) * 1.1
}

func TestSimulate_DrawOrderIsSpendThenISAThenLISA(t *testing.T) {
	s := model.Scenario{
		SavingsBalance: 1000,
		SpendMean:      0,
		SpendStdDev:    10,
		ISABalance:     1000,
		ISAStdDev:      100 * math.Sqrt(52), // weekly stdev of 1.0
		LISABalance:    1000,
		LISAStdDev:     100 * math.Sqrt(52),
		Weeks:          2,
	}
	tr := Simulate(s, Sequence(1, 0.5, -0.25))

	assertClose(t, "savings", tr.Savings[1], 990)
	assertClose(t, "ISA", tr.ISA[1], 1500)
	assertClose(t, "LISA", tr.LISA[1], 750)
}

func TestSimulate_NegativeBalancesAreNotClamped(t *testing.T) {
	s := model.Scenario{
		SavingsBalance: 100,
		SpendMean:      80,
		Weeks:          4,
	}
	tr := Simulate(s, Fixed())
	if got := tr.Final(model.Savings); got != -140 {
		t.Fatalf("final savings = %v, want -140", got)
	}
}

func TestSimulate_SingleWeek(t *testing.T) {
	s := model.DefaultScenario()
	s.Weeks = 1
	tr := Simulate(s, NewSampler(1, 1))
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
	if tr.Final(model.ISA) != s.ISABalance {
		t.Fatalf("final ISA = %v, want %v", tr.Final(model.ISA), s.ISABalance)
	}
}

func TestRun_RejectsInvalidScenario(t *testing.T) {
	s := model.DefaultScenario()
	s.Weeks = 0
	if _, err := Run(s, Fixed()); !errors.Is(err, model.ErrInvalidScenario) {
		t.Fatalf("Run error = %v, want ErrInvalidScenario", err)
	}
}

func TestWeeklyGrowth(t *testing.T) {
	mean, stdev := WeeklyGrowth(8, 12)
	assertClose(t, "mean", mean, 0.08/52)
	assertClose(t, "stdev", stdev, 0.12/math.Sqrt(52))
}

func TestNewSampler_ZeroStdevReturnsMean(t *testing.T) {
	s := NewSampler(99, 1)
	for i := 0; i < 10; i++ {
		if got := s.Normal(3.25, 0); got != 3.25 {
			t.Fatalf("Normal(3.25, 0) = %v, want 3.25", got)
		}
	}
}
